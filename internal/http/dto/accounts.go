package dto

import (
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/validation"
)

// ListResponse envuelve una página de resultados.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ─── Organizations ───

type CreateOrganizationRequest struct {
	Name     string         `json:"name" validate:"required,max=100"`
	Domain   string         `json:"domain" validate:"required,max=253"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type UpdateOrganizationRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,max=100"`
	Domain   *string        `json:"domain,omitempty" validate:"omitempty,max=253"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type OrganizationResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func FromOrganization(o *repository.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Domain:    o.Domain,
		Status:    string(o.Status),
		Metadata:  o.Metadata,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ─── Users ───

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
	Name     string `json:"name" validate:"required,max=100"`
}

// UserResponse nunca incluye el hash.
type UserResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

func FromUser(u *repository.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		Name:           u.Name,
		Status:         string(u.Status),
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}

// ─── Merchants ───

type CreateMerchantRequest struct {
	Name           string         `json:"name" validate:"required,max=100"`
	Description    string         `json:"description,omitempty" validate:"max=1000"`
	CountryCode    string         `json:"country_code" validate:"required,len=2"`
	Currency       string         `json:"currency" validate:"required,len=3"`
	PaymentMethods []string       `json:"payment_methods,omitempty" validate:"max=32,dive,required,max=64"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required,max=64"`
}

type RevokeAPIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// MerchantResponse expone las API keys enmascaradas.
type MerchantResponse struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	CountryCode    string         `json:"country_code"`
	Currency       string         `json:"currency"`
	Status         string         `json:"status"`
	PaymentMethods []string       `json:"payment_methods"`
	APIKeys        []string       `json:"api_keys"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func FromMerchant(m *repository.Merchant) MerchantResponse {
	keys := make([]string, len(m.APIKeys))
	for i, k := range m.APIKeys {
		keys[i] = validation.MaskAPIKey(k)
	}
	methods := m.PaymentMethods
	if methods == nil {
		methods = []string{}
	}
	return MerchantResponse{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		CountryCode:    m.CountryCode,
		Currency:       m.Currency,
		Status:         string(m.Status),
		PaymentMethods: methods,
		APIKeys:        keys,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// IssuedAPIKeyResponse es la única respuesta que lleva la key en claro.
type IssuedAPIKeyResponse struct {
	APIKey   string           `json:"api_key"`
	Merchant MerchantResponse `json:"merchant"`
}

// MapList convierte una página con la función de mapeo dada.
func MapList[E any, T any](items []E, total, limit, offset int, f func(E) T) ListResponse[T] {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = f(it)
	}
	return ListResponse[T]{Items: out, Total: total, Limit: limit, Offset: offset}
}
