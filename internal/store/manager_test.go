package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/store"
	"github.com/dropDatabas3/accounts/internal/store/adapters/memory"
)

type countingAdapter struct {
	name  string
	calls atomic.Int32
}

func (a *countingAdapter) Name() string { return a.name }

func (a *countingAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	a.calls.Add(1)
	return memory.NewConnection(), nil
}

var counting = &countingAdapter{name: "counting-test"}

func init() { store.RegisterAdapter(counting) }

func TestManager_ConnectsOnce(t *testing.T) {
	m := store.NewManager(store.AdapterConfig{Name: counting.name})
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Users(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := counting.calls.Load(); n != 1 {
		t.Fatalf("connect calls = %d, want 1", n)
	}
	if st := m.Stats(); !st.Connected || st.Driver != counting.name {
		t.Fatalf("stats = %+v", st)
	}
}

func TestManager_ClosedReturnsNoDatabase(t *testing.T) {
	m := store.NewManager(store.AdapterConfig{Name: "memory"})
	if err := m.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Open(context.Background()); !repository.IsNoDatabase(err) {
		t.Fatalf("err = %v, want ErrNoDatabase", err)
	}
}

func TestManager_UnknownAdapter(t *testing.T) {
	m := store.NewManager(store.AdapterConfig{Name: "nope"})
	if _, err := m.Open(context.Background()); err == nil {
		t.Fatal("expected error for unregistered adapter")
	}
	if m.Stats().Connected {
		t.Fatal("failed connect must not be cached")
	}
}

func TestListAdapters(t *testing.T) {
	names := store.ListAdapters()
	found := false
	for _, n := range names {
		if n == "memory" {
			found = true
		}
	}
	if !found {
		t.Fatalf("adapters = %v, memory missing", names)
	}
}
