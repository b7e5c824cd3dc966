package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/metrics"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// Gateway implementa repository.Gateway[T] sobre database/sql.
//
// Cada mutación corre en su propia transacción; si algo falla se hace
// rollback antes de devolver el error. Sin Sort explícito, ListAll y FindOne
// ordenan por clave primaria.
type Gateway[T any] struct {
	db    *sql.DB
	d     dialect
	m     repository.Mapper[T]
	cols  []string
	known map[string]struct{}
}

var _ repository.Gateway[*repository.Merchant] = (*Gateway[*repository.Merchant])(nil)

func newGateway[T any](db *sql.DB, d dialect, m repository.Mapper[T]) *Gateway[T] {
	cols := m.Columns()
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}
	return &Gateway[T]{db: db, d: d, m: m, cols: cols, known: known}
}

func (g *Gateway[T]) entity() string { return g.m.Entity() }
func (g *Gateway[T]) pk() string     { return g.cols[0] }

func (g *Gateway[T]) track(op string) func(*error) {
	start := time.Now()
	return func(err *error) {
		metrics.ObserveRepository(g.d.name, g.entity(), op, start, *err)
	}
}

// fail clasifica un error del driver. Los errores de dominio pasan sin tocar.
func (g *Gateway[T]) fail(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err), repository.IsConflict(err),
		repository.IsInvalidArgument(err), repository.IsRepositoryError(err):
		return err
	case g.d.isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", g.entity(), repository.ErrConflict, err)
	}
	logger.L().Error("repository operation failed",
		logger.Layer("repository"),
		logger.Backend(g.d.name),
		logger.Entity(g.entity()),
		logger.Op(op),
		logger.Err(err),
	)
	return repository.Fail(g.entity(), op, err)
}

// inTx ejecuta fn en una transacción. Rollback si fn o el commit fallan.
func (g *Gateway[T]) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return g.fail(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return g.fail(op, err)
	}
	if err := tx.Commit(); err != nil {
		return g.fail(op, err)
	}
	return nil
}

func (g *Gateway[T]) record(entity T) (repository.Record, error) {
	if g.m.ID(entity) == "" {
		return nil, fmt.Errorf("%s: empty id: %w", g.entity(), repository.ErrInvalidArgument)
	}
	return g.m.ToRecord(entity), nil
}

func (g *Gateway[T]) decode(op string, rec repository.Record) (T, error) {
	e, err := g.m.FromRecord(rec)
	if err != nil {
		var zero T
		return zero, repository.Fail(g.entity(), op, err)
	}
	return e, nil
}

// ─── SQL builders ───

// stmt acumula texto SQL y argumentos, numerando placeholders.
type stmt struct {
	d    dialect
	sb   strings.Builder
	args []any
}

func (s *stmt) write(parts ...string) *stmt {
	for _, p := range parts {
		s.sb.WriteString(p)
	}
	return s
}

func (s *stmt) bind(v any) string {
	s.args = append(s.args, s.d.arg(repository.Normalize(v)))
	return s.d.placeholder(len(s.args))
}

func (s *stmt) String() string { return s.sb.String() }

func (g *Gateway[T]) newStmt() *stmt { return &stmt{d: g.d} }

// insert arma INSERT; con upsert agrega ON CONFLICT sobre la PK.
func (g *Gateway[T]) insert(rec repository.Record, upsert bool) *stmt {
	s := g.newStmt()
	ph := make([]string, len(g.cols))
	for i, c := range g.cols {
		ph[i] = s.bind(rec[c])
	}
	s.write("INSERT INTO ", g.m.Table(), " (", strings.Join(g.cols, ", "), ") VALUES (", strings.Join(ph, ", "), ")")
	if upsert {
		sets := make([]string, 0, len(g.cols)-1)
		for _, c := range g.cols[1:] {
			sets = append(sets, c+" = excluded."+c)
		}
		s.write(" ON CONFLICT (", g.pk(), ") DO UPDATE SET ", strings.Join(sets, ", "))
	}
	return s
}

// where agrega las condiciones sobre columnas conocidas. Las demás se ignoran.
func (g *Gateway[T]) where(s *stmt, fs repository.Filters) {
	var conds []string
	for _, field := range fs.Fields() {
		if _, ok := g.known[field]; !ok {
			continue
		}
		f := fs[field]
		switch f.Op {
		case repository.OpEquals:
			if repository.Normalize(f.Value) == nil {
				conds = append(conds, field+" IS NULL")
			} else {
				conds = append(conds, field+" = "+s.bind(f.Value))
			}
		case repository.OpIn:
			if len(f.Values) == 0 {
				conds = append(conds, "1 = 0")
				continue
			}
			ph := make([]string, len(f.Values))
			for i, v := range f.Values {
				ph[i] = s.bind(v)
			}
			conds = append(conds, field+" IN ("+strings.Join(ph, ", ")+")")
		case repository.OpRange:
			if f.Min != nil {
				conds = append(conds, field+" >= "+s.bind(f.Min))
			}
			if f.Max != nil {
				conds = append(conds, field+" <= "+s.bind(f.Max))
			}
		case repository.OpLike:
			op, pattern := g.d.like(f.Pattern)
			conds = append(conds, field+" "+op+" "+s.bind(pattern))
		}
	}
	if len(conds) > 0 {
		s.write(" WHERE ", strings.Join(conds, " AND "))
	}
}

func (g *Gateway[T]) selectFrom(fs repository.Filters) *stmt {
	s := g.newStmt().write("SELECT ", strings.Join(g.cols, ", "), " FROM ", g.m.Table())
	g.where(s, fs)
	return s
}

func (g *Gateway[T]) scanRecord(scan func(dest ...any) error) (repository.Record, error) {
	vals := make([]any, len(g.cols))
	ptrs := make([]any, len(g.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := scan(ptrs...); err != nil {
		return nil, err
	}
	rec := make(repository.Record, len(g.cols))
	for i, c := range g.cols {
		rec[c] = vals[i]
	}
	return rec, nil
}

func (g *Gateway[T]) query(ctx context.Context, op string, s *stmt) ([]T, error) {
	rows, err := g.db.QueryContext(ctx, s.String(), s.args...)
	if err != nil {
		return nil, g.fail(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := g.scanRecord(rows.Scan)
		if err != nil {
			return nil, g.fail(op, err)
		}
		e, err := g.decode(op, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail(op, err)
	}
	return out, nil
}

func requireFilters(entity, op string, fs repository.Filters) error {
	if len(fs) == 0 {
		return fmt.Errorf("%s: %s without filters: %w", entity, op, repository.ErrInvalidArgument)
	}
	return nil
}

// ─── Gateway ───

func (g *Gateway[T]) Save(ctx context.Context, entity T) (out T, err error) {
	defer g.track("save")(&err)

	rec, err := g.record(entity)
	if err != nil {
		return out, err
	}
	err = g.inTx(ctx, "save", func(tx *sql.Tx) error {
		s := g.insert(rec, true)
		_, err := tx.ExecContext(ctx, s.String(), s.args...)
		return err
	})
	if err != nil {
		return out, err
	}
	return g.decode("save", rec)
}

// BulkSave guarda todas las entidades en una sola transacción: o se guardan
// todas o ninguna.
func (g *Gateway[T]) BulkSave(ctx context.Context, entities []T) (out []T, err error) {
	defer g.track("bulk_save")(&err)

	recs := make([]repository.Record, 0, len(entities))
	for _, e := range entities {
		rec, err := g.record(e)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	err = g.inTx(ctx, "bulk_save", func(tx *sql.Tx) error {
		for _, rec := range recs {
			s := g.insert(rec, true)
			if _, err := tx.ExecContext(ctx, s.String(), s.args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out = make([]T, 0, len(recs))
	for _, rec := range recs {
		e, err := g.decode("bulk_save", rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// SaveUnique chequea y, si no hay match, inserta dentro de la misma
// transacción. Los índices únicos del schema cubren la carrera entre
// transacciones concurrentes: la segunda falla con ErrConflict.
func (g *Gateway[T]) SaveUnique(ctx context.Context, entity T, unique repository.Filters) (out T, err error) {
	defer g.track("save_unique")(&err)

	if err := requireFilters(g.entity(), "save unique", unique); err != nil {
		return out, err
	}
	rec, err := g.record(entity)
	if err != nil {
		return out, err
	}
	err = g.inTx(ctx, "save_unique", func(tx *sql.Tx) error {
		check := g.newStmt().write("SELECT 1 FROM ", g.m.Table())
		g.where(check, unique)
		check.write(" LIMIT 1")

		var one int
		switch err := tx.QueryRowContext(ctx, check.String(), check.args...).Scan(&one); {
		case err == nil:
			return fmt.Errorf("%s: %w", g.entity(), repository.ErrConflict)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		s := g.insert(rec, false)
		_, err := tx.ExecContext(ctx, s.String(), s.args...)
		return err
	})
	if err != nil {
		return out, err
	}
	return g.decode("save_unique", rec)
}

// Update es un único UPDATE ... WHERE pk AND cond. Si no afecta filas se
// distingue, dentro de la misma transacción, entre id inexistente y cond
// que no matchea.
func (g *Gateway[T]) Update(ctx context.Context, id string, set repository.Record, cond repository.Filters) (out T, applied bool, err error) {
	defer g.track("update")(&err)

	match, err := repository.CheckUpdate(g.entity(), g.cols, id, set, cond)
	if err != nil {
		return out, false, err
	}

	var rec repository.Record
	err = g.inTx(ctx, "update", func(tx *sql.Tx) error {
		s := g.newStmt()
		sets := make([]string, 0, len(set))
		for _, c := range g.cols[1:] {
			if v, ok := set[c]; ok {
				sets = append(sets, c+" = "+s.bind(v))
			}
		}
		s.write("UPDATE ", g.m.Table(), " SET ", strings.Join(sets, ", "))
		g.where(s, match)
		res, err := tx.ExecContext(ctx, s.String(), s.args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}

		sel := g.selectFrom(repository.Where(g.pk(), repository.Equals(id)))
		got, err := g.scanRecord(tx.QueryRowContext(ctx, sel.String(), sel.args...).Scan)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return repository.NotFound(g.entity(), id)
		case err != nil:
			return err
		}
		if n > 0 {
			rec = got
			applied = true
		}
		return nil
	})
	if err != nil || !applied {
		return out, false, err
	}
	out, err = g.decode("update", rec)
	return out, err == nil, err
}

func (g *Gateway[T]) Get(ctx context.Context, id string) (out T, err error) {
	defer g.track("get")(&err)

	s := g.selectFrom(repository.Where(g.pk(), repository.Equals(id)))
	rec, err := g.scanRecord(g.db.QueryRowContext(ctx, s.String(), s.args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return out, repository.NotFound(g.entity(), id)
	}
	if err != nil {
		return out, g.fail("get", err)
	}
	return g.decode("get", rec)
}

func (g *Gateway[T]) FindOne(ctx context.Context, filters repository.Filters) (out T, found bool, err error) {
	defer g.track("find_one")(&err)

	if err := requireFilters(g.entity(), "find one", filters); err != nil {
		return out, false, err
	}
	s := g.selectFrom(filters).write(" ORDER BY ", g.pk(), " LIMIT 1")
	rows, err := g.query(ctx, "find_one", s)
	if err != nil || len(rows) == 0 {
		return out, false, err
	}
	return rows[0], true, nil
}

func (g *Gateway[T]) Exists(ctx context.Context, filters repository.Filters) (ok bool, err error) {
	defer g.track("exists")(&err)

	if err := requireFilters(g.entity(), "exists", filters); err != nil {
		return false, err
	}
	s := g.newStmt().write("SELECT 1 FROM ", g.m.Table())
	g.where(s, filters)
	s.write(" LIMIT 1")

	var one int
	switch err := g.db.QueryRowContext(ctx, s.String(), s.args...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, g.fail("exists", err)
	}
	return true, nil
}

func (g *Gateway[T]) Delete(ctx context.Context, id string) (ok bool, err error) {
	defer g.track("delete")(&err)

	err = g.inTx(ctx, "delete", func(tx *sql.Tx) error {
		s := g.newStmt().write("DELETE FROM ", g.m.Table())
		g.where(s, repository.Where(g.pk(), repository.Equals(id)))
		res, err := tx.ExecContext(ctx, s.String(), s.args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.NotFound(g.entity(), id)
		}
		return nil
	})
	return err == nil, err
}

func (g *Gateway[T]) BulkDelete(ctx context.Context, filters repository.Filters) (n int, err error) {
	defer g.track("bulk_delete")(&err)

	if err := requireFilters(g.entity(), "bulk delete", filters); err != nil {
		return 0, err
	}
	err = g.inTx(ctx, "bulk_delete", func(tx *sql.Tx) error {
		s := g.newStmt().write("DELETE FROM ", g.m.Table())
		g.where(s, filters)
		res, err := tx.ExecContext(ctx, s.String(), s.args...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		n = int(affected)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (g *Gateway[T]) ListAll(ctx context.Context, opts repository.ListOptions) (out []T, err error) {
	defer g.track("list_all")(&err)

	s := g.selectFrom(opts.Filters)

	order := g.pk()
	if _, ok := g.known[opts.Sort.Field]; ok {
		order = opts.Sort.Field
		if opts.Sort.Desc {
			order += " DESC"
		}
		if opts.Sort.Field != g.pk() {
			order += ", " + g.pk()
		}
	}
	s.write(" ORDER BY ", order)
	s.write(" LIMIT ", s.bind(opts.EffectiveLimit()), " OFFSET ", s.bind(max(opts.Offset, 0)))

	return g.query(ctx, "list_all", s)
}

func (g *Gateway[T]) Count(ctx context.Context, filters repository.Filters) (n int, err error) {
	defer g.track("count")(&err)

	s := g.newStmt().write("SELECT COUNT(*) FROM ", g.m.Table())
	g.where(s, filters)
	if err := g.db.QueryRowContext(ctx, s.String(), s.args...).Scan(&n); err != nil {
		return 0, g.fail("count", err)
	}
	return n, nil
}
