package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register must tolerate AlreadyRegistered: %v", err)
	}
}

func TestObserveRepository_ErrorClass(t *testing.T) {
	conflict := fmt.Errorf("User: %w", repository.ErrConflict)
	before := testutil.ToFloat64(RepositoryErrors.WithLabelValues("memory", "User", "save_unique", "conflict"))

	ObserveRepository("memory", "User", "save_unique", time.Now(), conflict)
	ObserveRepository("memory", "User", "save_unique", time.Now(), nil)

	after := testutil.ToFloat64(RepositoryErrors.WithLabelValues("memory", "User", "save_unique", "conflict"))
	if after-before != 1 {
		t.Fatalf("conflict counter delta = %v, want 1", after-before)
	}
}

func TestErrorClass(t *testing.T) {
	cases := map[string]error{
		"not_found":        repository.NotFound("User", "x"),
		"invalid_argument": repository.ErrInvalidArgument,
		"repository":       errors.New("boom"),
	}
	for want, err := range cases {
		if got := errorClass(err); got != want {
			t.Fatalf("errorClass(%v) = %s, want %s", err, got, want)
		}
	}
}
