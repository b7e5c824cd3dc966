package repository

import (
	"context"
	"fmt"
)

// DefaultLimit es el tamaño de página cuando ListOptions.Limit es 0.
const DefaultLimit = 100

// Record es la representación de almacenamiento de una entidad: columna -> valor.
type Record map[string]any

// Clone devuelve una copia superficial del record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Mapper traduce entre una entidad de dominio y su Record.
// ToRecord y FromRecord deben ser totales, puros e inversos entre sí.
type Mapper[T any] interface {
	// Entity es el nombre de la entidad para errores y logs (ej: "User").
	Entity() string

	// Table es la tabla del backend relacional.
	Table() string

	// Columns lista las columnas conocidas; la primera es la clave primaria.
	Columns() []string

	// ID devuelve el identificador de la entidad.
	ID(entity T) string

	ToRecord(entity T) Record
	FromRecord(rec Record) (T, error)
}

// Sort define el orden de ListAll. Field vacío = sin orden explícito.
type Sort struct {
	Field string
	Desc  bool
}

// ListOptions parámetros de ListAll. La paginación es siempre por offset.
type ListOptions struct {
	Limit   int
	Offset  int
	Sort    Sort
	Filters Filters
}

// EffectiveLimit aplica DefaultLimit.
func (o ListOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

// Gateway es el contrato genérico de persistencia, común a todos los backends.
//
// El gateway no garantiza unicidad: los callers que la necesitan usan
// SaveUnique o chequean con Exists antes de Save.
type Gateway[T any] interface {
	// Save inserta o reemplaza por ID.
	Save(ctx context.Context, entity T) (T, error)

	// BulkSave guarda varias entidades. Atómico en el backend relacional,
	// secuencial y sin atomicidad en el backend en memoria.
	BulkSave(ctx context.Context, entities []T) ([]T, error)

	// SaveUnique inserta la entidad solo si ningún registro matchea unique.
	// Retorna ErrConflict si ya existe. El chequeo y la inserción son atómicos.
	SaveUnique(ctx context.Context, entity T, unique Filters) (T, error)

	// Update aplica set sobre el registro id sólo si además matchea cond, en
	// una sola operación atómica. Retorna *NotFoundError si id no existe y
	// (zero, false, nil) si existe pero no matchea cond. La PK y las columnas
	// desconocidas no se pueden setear: ErrInvalidArgument.
	Update(ctx context.Context, id string, set Record, cond Filters) (T, bool, error)

	// Get retorna *NotFoundError si no existe.
	Get(ctx context.Context, id string) (T, error)

	// FindOne retorna el primer match. ErrInvalidArgument si filters está vacío.
	FindOne(ctx context.Context, filters Filters) (T, bool, error)

	// Exists retorna true si algún registro matchea. ErrInvalidArgument si filters está vacío.
	Exists(ctx context.Context, filters Filters) (bool, error)

	// Delete retorna *NotFoundError si no existe.
	Delete(ctx context.Context, id string) (bool, error)

	// BulkDelete retorna la cantidad borrada; cero no es error.
	// ErrInvalidArgument si filters está vacío.
	BulkDelete(ctx context.Context, filters Filters) (int, error)

	ListAll(ctx context.Context, opts ListOptions) ([]T, error)

	// Count con filters nil cuenta todo.
	Count(ctx context.Context, filters Filters) (int, error)
}

// CheckUpdate valida el set de Update contra las columnas del mapper y
// devuelve cond + la PK como filtro nuevo (cond no se modifica).
func CheckUpdate(entity string, cols []string, id string, set Record, cond Filters) (Filters, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: update with empty id: %w", entity, ErrInvalidArgument)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%s: update without columns: %w", entity, ErrInvalidArgument)
	}
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols[1:] {
		known[c] = struct{}{}
	}
	for c := range set {
		if _, ok := known[c]; !ok {
			return nil, fmt.Errorf("%s: update of column %q: %w", entity, c, ErrInvalidArgument)
		}
	}
	merged := make(Filters, len(cond)+1)
	for k, f := range cond {
		merged[k] = f
	}
	return merged.And(cols[0], Equals(id)), nil
}
