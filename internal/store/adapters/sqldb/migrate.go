package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql).
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationResult resultado de aplicar migraciones.
type MigrationResult struct {
	Applied  []int
	Skipped  []int
	Duration time.Duration
}

// Migrator aplica las migraciones de un dialecto. Cada migración corre en su
// propia transacción junto con su registro en _migrations.
type Migrator struct {
	fsys fs.FS
	dir  string
	d    dialect
}

func newMigrator(fsys fs.FS, d dialect) *Migrator {
	return &Migrator{fsys: fsys, dir: d.name, d: d}
}

// Parse lee las migraciones ordenadas por versión.
func (m *Migrator) Parse() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: read %s: %w", m.dir, err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		version, _ := strconv.Atoi(match[1])
		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("migrations: read %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: match[2], SQL: string(content)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run aplica las migraciones pendientes.
func (m *Migrator) Run(ctx context.Context, db *sql.DB) (*MigrationResult, error) {
	start := time.Now()
	res := &MigrationResult{}

	if _, err := db.ExecContext(ctx, m.trackingTable()); err != nil {
		return res, fmt.Errorf("migrations: create tracking table: %w", err)
	}
	applied, err := m.appliedVersions(ctx, db)
	if err != nil {
		return res, err
	}
	migrations, err := m.Parse()
	if err != nil {
		return res, err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			res.Skipped = append(res.Skipped, mig.Version)
			continue
		}
		if err := m.apply(ctx, db, mig); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("migrations: apply %04d_%s: %w", mig.Version, mig.Name, err)
		}
		res.Applied = append(res.Applied, mig.Version)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (m *Migrator) trackingTable() string {
	ts := "TIMESTAMP"
	if m.d.name == postgresDialect.name {
		ts = "TIMESTAMPTZ"
	}
	return `CREATE TABLE IF NOT EXISTS _migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at ` + ts + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
}

func (m *Migrator) appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: list applied: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, db *sql.DB, mig Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO _migrations (version, name) VALUES (%s, %s)", m.d.placeholder(1), m.d.placeholder(2))
	if _, err := tx.ExecContext(ctx, q, mig.Version, mig.Name); err != nil {
		return err
	}
	return tx.Commit()
}
