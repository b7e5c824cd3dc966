package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/metrics"
)

// Gateway implementa repository.Gateway[T] en memoria.
//
// Guarda Records (no punteros a entidades), así que lo que el caller haga con
// una entidad devuelta no modifica el store. Las escrituras toman el lock
// exclusivo; las lecturas comparten el lock de lectura y nunca ven un record
// a medio escribir. El orden natural es el de inserción.
type Gateway[T any] struct {
	mapper repository.Mapper[T]
	known  map[string]struct{}

	mu    sync.RWMutex
	order []string
	rows  map[string]repository.Record
}

var _ repository.Gateway[*repository.User] = (*Gateway[*repository.User])(nil)

// NewGateway crea un store vacío para la entidad del mapper.
func NewGateway[T any](m repository.Mapper[T]) *Gateway[T] {
	known := make(map[string]struct{}, len(m.Columns()))
	for _, c := range m.Columns() {
		known[c] = struct{}{}
	}
	return &Gateway[T]{
		mapper: m,
		known:  known,
		rows:   make(map[string]repository.Record),
	}
}

func (g *Gateway[T]) entity() string { return g.mapper.Entity() }

// track mide una operación: defer g.track("op")(&err).
func (g *Gateway[T]) track(op string) func(*error) {
	start := time.Now()
	return func(err *error) {
		metrics.ObserveRepository("memory", g.entity(), op, start, *err)
	}
}

// put asume g.mu tomado en escritura.
func (g *Gateway[T]) put(id string, rec repository.Record) {
	if _, ok := g.rows[id]; !ok {
		g.order = append(g.order, id)
	}
	g.rows[id] = rec
}

// remove asume g.mu tomado en escritura.
func (g *Gateway[T]) remove(id string) {
	delete(g.rows, id)
	if i := slices.Index(g.order, id); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
}

func (g *Gateway[T]) record(entity T) (string, repository.Record, error) {
	id := g.mapper.ID(entity)
	if id == "" {
		return "", nil, fmt.Errorf("%s: empty id: %w", g.entity(), repository.ErrInvalidArgument)
	}
	return id, g.mapper.ToRecord(entity), nil
}

func (g *Gateway[T]) decode(op string, rec repository.Record) (T, error) {
	e, err := g.mapper.FromRecord(rec)
	if err != nil {
		var zero T
		return zero, repository.Fail(g.entity(), op, err)
	}
	return e, nil
}

func (g *Gateway[T]) Save(ctx context.Context, entity T) (out T, err error) {
	defer g.track("save")(&err)

	id, rec, err := g.record(entity)
	if err != nil {
		return out, err
	}
	g.mu.Lock()
	g.put(id, rec)
	g.mu.Unlock()
	return g.decode("save", rec)
}

// BulkSave guarda en orden, una entidad por vez. Si una falla, las anteriores
// quedan guardadas (no hay atomicidad en este backend).
func (g *Gateway[T]) BulkSave(ctx context.Context, entities []T) ([]T, error) {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		saved, err := g.Save(ctx, e)
		if err != nil {
			return out, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (g *Gateway[T]) SaveUnique(ctx context.Context, entity T, unique repository.Filters) (out T, err error) {
	defer g.track("save_unique")(&err)

	if len(unique) == 0 {
		return out, fmt.Errorf("%s: save unique without filters: %w", g.entity(), repository.ErrInvalidArgument)
	}
	id, rec, err := g.record(entity)
	if err != nil {
		return out, err
	}

	g.mu.Lock()
	for _, existing := range g.order {
		if unique.Matches(g.rows[existing]) {
			g.mu.Unlock()
			return out, fmt.Errorf("%s: %w", g.entity(), repository.ErrConflict)
		}
	}
	g.put(id, rec)
	g.mu.Unlock()
	return g.decode("save_unique", rec)
}

// Update lee, chequea cond y escribe bajo el mismo lock de escritura.
func (g *Gateway[T]) Update(ctx context.Context, id string, set repository.Record, cond repository.Filters) (out T, applied bool, err error) {
	defer g.track("update")(&err)

	if _, err := repository.CheckUpdate(g.entity(), g.mapper.Columns(), id, set, cond); err != nil {
		return out, false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.rows[id]
	if !ok {
		return out, false, repository.NotFound(g.entity(), id)
	}
	if !cond.Matches(rec) {
		return out, false, nil
	}
	next := rec.Clone()
	for c, v := range set {
		next[c] = v
	}
	out, err = g.decode("update", next)
	if err != nil {
		return out, false, err
	}
	g.rows[id] = next
	return out, true, nil
}

func (g *Gateway[T]) Get(ctx context.Context, id string) (out T, err error) {
	g.mu.RLock()
	rec, ok := g.rows[id]
	g.mu.RUnlock()
	if !ok {
		return out, repository.NotFound(g.entity(), id)
	}
	return g.decode("get", rec)
}

func (g *Gateway[T]) FindOne(ctx context.Context, filters repository.Filters) (out T, found bool, err error) {
	if len(filters) == 0 {
		return out, false, fmt.Errorf("%s: find one without filters: %w", g.entity(), repository.ErrInvalidArgument)
	}
	g.mu.RLock()
	var hit repository.Record
	for _, id := range g.order {
		if rec := g.rows[id]; filters.Matches(rec) {
			hit = rec
			break
		}
	}
	g.mu.RUnlock()
	if hit == nil {
		return out, false, nil
	}
	out, err = g.decode("find_one", hit)
	return out, err == nil, err
}

func (g *Gateway[T]) Exists(ctx context.Context, filters repository.Filters) (bool, error) {
	if len(filters) == 0 {
		return false, fmt.Errorf("%s: exists without filters: %w", g.entity(), repository.ErrInvalidArgument)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.order {
		if filters.Matches(g.rows[id]) {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gateway[T]) Delete(ctx context.Context, id string) (ok bool, err error) {
	defer g.track("delete")(&err)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.rows[id]; !exists {
		return false, repository.NotFound(g.entity(), id)
	}
	g.remove(id)
	return true, nil
}

func (g *Gateway[T]) BulkDelete(ctx context.Context, filters repository.Filters) (n int, err error) {
	defer g.track("bulk_delete")(&err)

	if len(filters) == 0 {
		return 0, fmt.Errorf("%s: bulk delete without filters: %w", g.entity(), repository.ErrInvalidArgument)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	var doomed []string
	for _, id := range g.order {
		if filters.Matches(g.rows[id]) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		g.remove(id)
	}
	return len(doomed), nil
}

func (g *Gateway[T]) ListAll(ctx context.Context, opts repository.ListOptions) ([]T, error) {
	g.mu.RLock()
	matched := make([]repository.Record, 0, len(g.order))
	for _, id := range g.order {
		if rec := g.rows[id]; opts.Filters.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	g.mu.RUnlock()

	if field := opts.Sort.Field; field != "" {
		if _, ok := g.known[field]; ok {
			sort.SliceStable(matched, func(i, j int) bool {
				c := repository.CompareValues(matched[i][field], matched[j][field])
				if opts.Sort.Desc {
					return c > 0
				}
				return c < 0
			})
		}
	}

	offset := max(opts.Offset, 0)
	if offset >= len(matched) {
		return []T{}, nil
	}
	end := min(offset+opts.EffectiveLimit(), len(matched))

	out := make([]T, 0, end-offset)
	for _, rec := range matched[offset:end] {
		e, err := g.decode("list_all", rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (g *Gateway[T]) Count(ctx context.Context, filters repository.Filters) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(filters) == 0 {
		return len(g.rows), nil
	}
	n := 0
	for _, id := range g.order {
		if filters.Matches(g.rows[id]) {
			n++
		}
	}
	return n, nil
}
