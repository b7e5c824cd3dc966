package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/types"
)

// User representa un principal autenticable dentro de una organización.
type User struct {
	ID             string
	Email          string // normalizado (lower-case)
	OrganizationID string
	PasswordHash   string
	Name           string
	Status         types.UserStatus
	CreatedAt      time.Time
	LastLoginAt    *time.Time
}

// IsActive retorna true si el usuario puede autenticarse.
func (u *User) IsActive() bool { return u.Status == types.UserActive }

func (u *User) Activate()   { u.Status = types.UserActive }
func (u *User) Deactivate() { u.Status = types.UserInactive }
func (u *User) Suspend()    { u.Status = types.UserSuspended }

// UserRepository agrega búsquedas por email al Gateway genérico.
type UserRepository interface {
	Gateway[*User]

	// GetByEmail busca por email normalizado en cualquier organización.
	// Retorna *NotFoundError si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByEmailInOrganization busca por email dentro de una organización.
	GetByEmailInOrganization(ctx context.Context, email, organizationID string) (*User, error)

	// RecordLogin setea last_login_at sólo si el usuario sigue activo.
	// ok=false si el estado cambió desde la lectura.
	RecordLogin(ctx context.Context, id string, at time.Time) (*User, bool, error)

	// UpdatePasswordHash reemplaza el hash sólo si el usuario sigue activo.
	UpdatePasswordHash(ctx context.Context, id, phc string) (bool, error)
}

// Columnas de accounts_users.
const (
	UserColID             = "id"
	UserColEmail          = "email"
	UserColOrganizationID = "organization_id"
	UserColPasswordHash   = "hashed_password"
	UserColName           = "name"
	UserColStatus         = "status"
	UserColCreatedAt      = "created_at"
	UserColLastLoginAt    = "last_login_at"
)

// UserMapper implementa Mapper[*User].
type UserMapper struct{}

func (UserMapper) Entity() string { return "User" }
func (UserMapper) Table() string  { return "accounts_users" }

func (UserMapper) Columns() []string {
	return []string{
		UserColID, UserColEmail, UserColOrganizationID, UserColPasswordHash,
		UserColName, UserColStatus, UserColCreatedAt, UserColLastLoginAt,
	}
}

func (UserMapper) ID(u *User) string { return u.ID }

func (UserMapper) ToRecord(u *User) Record {
	return Record{
		UserColID:             u.ID,
		UserColEmail:          u.Email,
		UserColOrganizationID: u.OrganizationID,
		UserColPasswordHash:   u.PasswordHash,
		UserColName:           u.Name,
		UserColStatus:         string(u.Status),
		UserColCreatedAt:      u.CreatedAt.UTC(),
		UserColLastLoginAt:    timePtrValue(u.LastLoginAt),
	}
}

func (UserMapper) FromRecord(rec Record) (*User, error) {
	createdAt, err := asTime(rec[UserColCreatedAt])
	if err != nil {
		return nil, err
	}
	lastLogin, err := asNullTime(rec[UserColLastLoginAt])
	if err != nil {
		return nil, err
	}
	return &User{
		ID:             asString(rec[UserColID]),
		Email:          asString(rec[UserColEmail]),
		OrganizationID: asString(rec[UserColOrganizationID]),
		PasswordHash:   asString(rec[UserColPasswordHash]),
		Name:           asString(rec[UserColName]),
		Status:         types.UserStatus(asString(rec[UserColStatus])),
		CreatedAt:      createdAt,
		LastLoginAt:    lastLogin,
	}, nil
}
