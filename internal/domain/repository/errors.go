package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument indica que los argumentos de la operación son inválidos
	// (ej: filtros vacíos en FindOne/Exists/BulkDelete).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRepository indica una falla del backend de almacenamiento.
	ErrRepository = errors.New("repository error")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// NotFoundError identifica la entidad y el ID que no se encontraron.
// errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound construye un *NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// RepositoryError envuelve una falla del backend. La operación ya hizo rollback
// cuando este error llega al caller.
type RepositoryError struct {
	Entity string
	Op     string
	Err    error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Entity, e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }

// Fail construye un *RepositoryError.
func Fail(entity, op string, err error) error {
	return &RepositoryError{Entity: entity, Op: op, Err: err}
}

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidArgument verifica si el error es ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsRepositoryError verifica si el error viene del backend.
func IsRepositoryError(err error) bool {
	return errors.Is(err, ErrRepository)
}

// IsNoDatabase verifica si el error es ErrNoDatabase.
func IsNoDatabase(err error) bool {
	return errors.Is(err, ErrNoDatabase)
}
