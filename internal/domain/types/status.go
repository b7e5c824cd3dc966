// Package types define tipos de dominio compartidos entre paquetes.
package types

// UserStatus es el estado del ciclo de vida de un usuario.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// IsValid retorna true si el estado es conocido.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// OrganizationStatus es el estado de una organización.
// Las organizaciones nuevas arrancan en "pending".
type OrganizationStatus string

const (
	OrganizationActive    OrganizationStatus = "active"
	OrganizationSuspended OrganizationStatus = "suspended"
	OrganizationPending   OrganizationStatus = "pending"
)

// IsValid retorna true si el estado es conocido.
func (s OrganizationStatus) IsValid() bool {
	switch s {
	case OrganizationActive, OrganizationSuspended, OrganizationPending:
		return true
	}
	return false
}

// MerchantStatus es el estado de un merchant.
type MerchantStatus string

const (
	MerchantActive      MerchantStatus = "active"
	MerchantSuspended   MerchantStatus = "suspended"
	MerchantUnderReview MerchantStatus = "under_review"
)

// IsValid retorna true si el estado es conocido.
func (s MerchantStatus) IsValid() bool {
	switch s {
	case MerchantActive, MerchantSuspended, MerchantUnderReview:
		return true
	}
	return false
}
