package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/types"
)

// Organization agrupa usuarios y merchants.
type Organization struct {
	ID        string
	Name      string
	Domain    string // lower-case
	Status    types.OrganizationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Metadata  map[string]any
}

func (o *Organization) IsActive() bool { return o.Status == types.OrganizationActive }

// Activate pasa la organización a active.
func (o *Organization) Activate(now time.Time) {
	o.Status = types.OrganizationActive
	o.UpdatedAt = now.UTC()
}

// Suspend pasa la organización a suspended.
func (o *Organization) Suspend(now time.Time) {
	o.Status = types.OrganizationSuspended
	o.UpdatedAt = now.UTC()
}

// OrganizationRepository agrega búsqueda por dominio.
type OrganizationRepository interface {
	Gateway[*Organization]

	// GetByDomain retorna *NotFoundError si no existe.
	GetByDomain(ctx context.Context, domain string) (*Organization, error)
}

const (
	OrgColID        = "id"
	OrgColName      = "name"
	OrgColDomain    = "domain"
	OrgColStatus    = "status"
	OrgColCreatedAt = "created_at"
	OrgColUpdatedAt = "updated_at"
	OrgColMetadata  = "metadata"
)

// OrganizationMapper implementa Mapper[*Organization].
type OrganizationMapper struct{}

func (OrganizationMapper) Entity() string { return "Organization" }
func (OrganizationMapper) Table() string  { return "accounts_organizations" }

func (OrganizationMapper) Columns() []string {
	return []string{OrgColID, OrgColName, OrgColDomain, OrgColStatus, OrgColCreatedAt, OrgColUpdatedAt, OrgColMetadata}
}

func (OrganizationMapper) ID(o *Organization) string { return o.ID }

func (OrganizationMapper) ToRecord(o *Organization) Record {
	return Record{
		OrgColID:        o.ID,
		OrgColName:      o.Name,
		OrgColDomain:    o.Domain,
		OrgColStatus:    string(o.Status),
		OrgColCreatedAt: o.CreatedAt.UTC(),
		OrgColUpdatedAt: o.UpdatedAt.UTC(),
		OrgColMetadata:  mapText(o.Metadata),
	}
}

func (OrganizationMapper) FromRecord(rec Record) (*Organization, error) {
	createdAt, err := asTime(rec[OrgColCreatedAt])
	if err != nil {
		return nil, err
	}
	updatedAt, err := asTime(rec[OrgColUpdatedAt])
	if err != nil {
		return nil, err
	}
	meta, err := asMap(rec[OrgColMetadata])
	if err != nil {
		return nil, err
	}
	return &Organization{
		ID:        asString(rec[OrgColID]),
		Name:      asString(rec[OrgColName]),
		Domain:    asString(rec[OrgColDomain]),
		Status:    types.OrganizationStatus(asString(rec[OrgColStatus])),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Metadata:  meta,
	}, nil
}
