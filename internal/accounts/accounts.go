// Package accounts contiene los servicios de administración de
// organizaciones, usuarios y merchants sobre los repositorios del store.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
)

// ErrInvalidTransition: la operación no aplica al estado actual de la entidad.
var ErrInvalidTransition = errors.New("accounts: invalid status transition")

// ListParams es la paginación común de los listados. Status vacío = todos.
type ListParams struct {
	Limit  int
	Offset int
	Status string
}

// Page es una página de resultados más el total que matchea los filtros.
type Page[T any] struct {
	Items []T
	Total int
}

func (p ListParams) options(filters repository.Filters) repository.ListOptions {
	return repository.ListOptions{
		Limit:   p.Limit,
		Offset:  p.Offset,
		Filters: filters,
		Sort:    repository.Sort{Field: "created_at"},
	}
}

// statusFilter valida Status contra los valores conocidos (case-insensitive).
func statusFilter[S ~string](raw string, valid func(S) bool) (S, bool, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false, nil
	}
	s := S(raw)
	if !valid(s) {
		return "", false, fmt.Errorf("%w: unknown status %q", repository.ErrInvalidArgument, raw)
	}
	return s, true, nil
}

func list[T any](ctx context.Context, g repository.Gateway[T], p ListParams, filters repository.Filters) (Page[T], error) {
	items, err := g.ListAll(ctx, p.options(filters))
	if err != nil {
		return Page[T]{}, err
	}
	total, err := g.Count(ctx, filters)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}

func nowFunc(f func() time.Time) func() time.Time {
	if f == nil {
		return time.Now
	}
	return f
}
