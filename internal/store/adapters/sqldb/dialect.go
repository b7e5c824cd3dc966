package sqldb

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

// sqliteTimeLayout es de ancho fijo para que el orden lexicográfico del texto
// coincida con el orden temporal.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000-07:00"

// dialect encapsula lo que cambia entre motores SQL.
type dialect struct {
	// name es el nombre del adapter y el subdirectorio de migraciones.
	name string
	// driver es el nombre registrado en database/sql.
	driver string
	// numbered indica placeholders $n (postgres) en vez de ? (sqlite).
	numbered bool
}

var (
	postgresDialect = dialect{name: "postgres", driver: "pgx", numbered: true}
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite"}
)

func (d dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// arg adapta un valor de Record al motor.
func (d dialect) arg(v any) any {
	if t, ok := v.(time.Time); ok {
		t = t.UTC()
		if d.name == sqliteDialect.name {
			return t.Format(sqliteTimeLayout)
		}
		return t
	}
	return v
}

// like retorna el operador y el patrón para una condición LIKE con la
// semántica case-sensitive de los otros backends. El LIKE de sqlite ignora
// mayúsculas en ASCII, así que ahí se usa GLOB.
func (d dialect) like(pattern string) (string, string) {
	if d.name != sqliteDialect.name {
		return "LIKE", pattern
	}
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteByte('*')
		case '_':
			b.WriteByte('?')
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return "GLOB", b.String()
}

// isUniqueViolation detecta violaciones de PK o índice único.
func (d dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
