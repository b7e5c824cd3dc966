package repository

import (
	"context"
	"slices"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/types"
)

// Merchant es un comercio que opera bajo una organización.
type Merchant struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string
	CountryCode    string // ISO-3166 alpha-2
	Currency       string // ISO-4217
	Status         types.MerchantStatus
	PaymentMethods []string
	APIKeys        []string
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m *Merchant) IsActive() bool { return m.Status == types.MerchantActive }

func (m *Merchant) setStatus(s types.MerchantStatus, now time.Time) {
	m.Status = s
	m.UpdatedAt = now.UTC()
}

func (m *Merchant) Activate(now time.Time)       { m.setStatus(types.MerchantActive, now) }
func (m *Merchant) Suspend(now time.Time)        { m.setStatus(types.MerchantSuspended, now) }
func (m *Merchant) PutUnderReview(now time.Time) { m.setStatus(types.MerchantUnderReview, now) }

// AddPaymentMethod agrega el método si no estaba. Retorna false si ya existía.
func (m *Merchant) AddPaymentMethod(method string, now time.Time) bool {
	if slices.Contains(m.PaymentMethods, method) {
		return false
	}
	m.PaymentMethods = append(m.PaymentMethods, method)
	m.UpdatedAt = now.UTC()
	return true
}

// RemovePaymentMethod retorna false si el método no estaba.
func (m *Merchant) RemovePaymentMethod(method string, now time.Time) bool {
	i := slices.Index(m.PaymentMethods, method)
	if i < 0 {
		return false
	}
	m.PaymentMethods = slices.Delete(m.PaymentMethods, i, i+1)
	m.UpdatedAt = now.UTC()
	return true
}

func (m *Merchant) AddAPIKey(key string, now time.Time) {
	m.APIKeys = append(m.APIKeys, key)
	m.UpdatedAt = now.UTC()
}

// RemoveAPIKey retorna false si la key no estaba.
func (m *Merchant) RemoveAPIKey(key string, now time.Time) bool {
	i := slices.Index(m.APIKeys, key)
	if i < 0 {
		return false
	}
	m.APIKeys = slices.Delete(m.APIKeys, i, i+1)
	m.UpdatedAt = now.UTC()
	return true
}

// MerchantRepository agrega listados por organización.
type MerchantRepository interface {
	Gateway[*Merchant]

	ListByOrganization(ctx context.Context, organizationID string, opts ListOptions) ([]*Merchant, error)
}

const (
	MerchantColID             = "id"
	MerchantColOrganizationID = "organization_id"
	MerchantColName           = "name"
	MerchantColDescription    = "description"
	MerchantColCountryCode    = "country_code"
	MerchantColCurrency       = "currency"
	MerchantColStatus         = "status"
	MerchantColPaymentMethods = "payment_methods"
	MerchantColAPIKeys        = "api_keys"
	MerchantColMetadata       = "metadata"
	MerchantColCreatedAt      = "created_at"
	MerchantColUpdatedAt      = "updated_at"
)

// MerchantMapper implementa Mapper[*Merchant].
type MerchantMapper struct{}

func (MerchantMapper) Entity() string { return "Merchant" }
func (MerchantMapper) Table() string  { return "accounts_merchants" }

func (MerchantMapper) Columns() []string {
	return []string{
		MerchantColID, MerchantColOrganizationID, MerchantColName, MerchantColDescription,
		MerchantColCountryCode, MerchantColCurrency, MerchantColStatus, MerchantColPaymentMethods,
		MerchantColAPIKeys, MerchantColMetadata, MerchantColCreatedAt, MerchantColUpdatedAt,
	}
}

func (MerchantMapper) ID(m *Merchant) string { return m.ID }

func (MerchantMapper) ToRecord(m *Merchant) Record {
	return Record{
		MerchantColID:             m.ID,
		MerchantColOrganizationID: m.OrganizationID,
		MerchantColName:           m.Name,
		MerchantColDescription:    m.Description,
		MerchantColCountryCode:    m.CountryCode,
		MerchantColCurrency:       m.Currency,
		MerchantColStatus:         string(m.Status),
		MerchantColPaymentMethods: stringsText(m.PaymentMethods),
		MerchantColAPIKeys:        stringsText(m.APIKeys),
		MerchantColMetadata:       mapText(m.Metadata),
		MerchantColCreatedAt:      m.CreatedAt.UTC(),
		MerchantColUpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func (MerchantMapper) FromRecord(rec Record) (*Merchant, error) {
	methods, err := asStrings(rec[MerchantColPaymentMethods])
	if err != nil {
		return nil, err
	}
	keys, err := asStrings(rec[MerchantColAPIKeys])
	if err != nil {
		return nil, err
	}
	meta, err := asMap(rec[MerchantColMetadata])
	if err != nil {
		return nil, err
	}
	createdAt, err := asTime(rec[MerchantColCreatedAt])
	if err != nil {
		return nil, err
	}
	updatedAt, err := asTime(rec[MerchantColUpdatedAt])
	if err != nil {
		return nil, err
	}
	return &Merchant{
		ID:             asString(rec[MerchantColID]),
		OrganizationID: asString(rec[MerchantColOrganizationID]),
		Name:           asString(rec[MerchantColName]),
		Description:    asString(rec[MerchantColDescription]),
		CountryCode:    asString(rec[MerchantColCountryCode]),
		Currency:       asString(rec[MerchantColCurrency]),
		Status:         types.MerchantStatus(asString(rec[MerchantColStatus])),
		PaymentMethods: methods,
		APIKeys:        keys,
		Metadata:       meta,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
