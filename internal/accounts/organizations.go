package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/audit"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/domain/types"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
	"github.com/dropDatabas3/accounts/internal/validation"
)

const componentOrganizations = "accounts.organizations"

// OrganizationService define las operaciones administrativas de organizaciones.
type OrganizationService interface {
	List(ctx context.Context, p ListParams) (Page[*repository.Organization], error)
	Get(ctx context.Context, id string) (*repository.Organization, error)
	Create(ctx context.Context, in CreateOrganizationInput) (*repository.Organization, error)
	Update(ctx context.Context, id string, in UpdateOrganizationInput) (*repository.Organization, error)
	Activate(ctx context.Context, id string) (*repository.Organization, error)
	Suspend(ctx context.Context, id string) (*repository.Organization, error)
	Reactivate(ctx context.Context, id string) (*repository.Organization, error)
}

type CreateOrganizationInput struct {
	Name     string
	Domain   string
	Metadata map[string]any
}

// UpdateOrganizationInput: los campos nil no se tocan.
type UpdateOrganizationInput struct {
	Name     *string
	Domain   *string
	Metadata map[string]any
}

type organizationService struct {
	orgs      repository.OrganizationRepository
	merchants repository.MerchantRepository
	now       func() time.Time
}

// NewOrganizationService crea el servicio. merchants puede ser nil; en ese caso
// Suspend no suspende los merchants de la organización.
func NewOrganizationService(orgs repository.OrganizationRepository, merchants repository.MerchantRepository, now func() time.Time) OrganizationService {
	return &organizationService{orgs: orgs, merchants: merchants, now: nowFunc(now)}
}

func (s *organizationService) List(ctx context.Context, p ListParams) (Page[*repository.Organization], error) {
	status, ok, err := statusFilter(p.Status, types.OrganizationStatus.IsValid)
	if err != nil {
		return Page[*repository.Organization]{}, err
	}
	var filters repository.Filters
	if ok {
		filters = repository.Where(repository.OrgColStatus, repository.Equals(status))
	}
	return list[*repository.Organization](ctx, s.orgs, p, filters)
}

func (s *organizationService) Get(ctx context.Context, id string) (*repository.Organization, error) {
	return s.orgs.Get(ctx, id)
}

func (s *organizationService) Create(ctx context.Context, in CreateOrganizationInput) (*repository.Organization, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentOrganizations), logger.Op("Create"))

	name, err := validation.OrganizationName(in.Name)
	if err != nil {
		return nil, err
	}
	domain, err := validation.Domain(in.Domain)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	org := &repository.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		Domain:    domain,
		Status:    types.OrganizationPending,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  in.Metadata,
	}
	saved, err := s.orgs.SaveUnique(ctx, org, repository.Where(repository.OrgColDomain, repository.Equals(domain)))
	if err != nil {
		if repository.IsConflict(err) {
			return nil, fmt.Errorf("organization with domain %s already exists: %w", domain, repository.ErrConflict)
		}
		log.Error("create organization failed", logger.Err(err))
		return nil, err
	}
	log.Info("organization created", logger.OrgID(saved.ID))
	audit.Log(ctx, audit.OrganizationCreated, logger.OrgID(saved.ID), zap.String("domain", saved.Domain))
	return saved, nil
}

func (s *organizationService) Update(ctx context.Context, id string, in UpdateOrganizationInput) (*repository.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := validation.OrganizationName(*in.Name)
		if err != nil {
			return nil, err
		}
		org.Name = name
	}
	if in.Domain != nil {
		domain, err := validation.Domain(*in.Domain)
		if err != nil {
			return nil, err
		}
		if domain != org.Domain {
			existing, found, err := s.orgs.FindOne(ctx, repository.Where(repository.OrgColDomain, repository.Equals(domain)))
			if err != nil {
				return nil, err
			}
			if found && existing.ID != org.ID {
				return nil, fmt.Errorf("organization with domain %s already exists: %w", domain, repository.ErrConflict)
			}
			org.Domain = domain
		}
	}
	if in.Metadata != nil {
		org.Metadata = in.Metadata
	}
	org.UpdatedAt = s.now().UTC()
	return s.orgs.Save(ctx, org)
}

// Activate aprueba una organización pendiente.
func (s *organizationService) Activate(ctx context.Context, id string) (*repository.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.Status != types.OrganizationPending {
		return nil, fmt.Errorf("%w: can only activate pending organizations", ErrInvalidTransition)
	}
	org.Activate(s.now())
	saved, err := s.orgs.Save(ctx, org)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.OrganizationActivated, logger.OrgID(id))
	return saved, nil
}

// Suspend suspende la organización y sus merchants activos.
func (s *organizationService) Suspend(ctx context.Context, id string) (*repository.Organization, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentOrganizations), logger.Op("Suspend"), logger.OrgID(id))

	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	org.Suspend(now)
	saved, err := s.orgs.Save(ctx, org)
	if err != nil {
		return nil, err
	}
	if s.merchants == nil {
		return saved, nil
	}

	active, err := s.merchants.ListAll(ctx, repository.ListOptions{
		Limit: maxCascade,
		Filters: repository.Where(repository.MerchantColOrganizationID, repository.Equals(id)).
			And(repository.MerchantColStatus, repository.Equals(types.MerchantActive)),
	})
	if err != nil {
		return nil, err
	}
	for _, m := range active {
		m.Suspend(now)
	}
	if _, err := s.merchants.BulkSave(ctx, active); err != nil {
		log.Error("suspend merchants failed", logger.Err(err))
		return nil, err
	}
	log.Info("organization suspended", logger.Count(len(active)))
	audit.Log(ctx, audit.OrganizationSuspended, logger.OrgID(id), zap.Int("merchants_suspended", len(active)))
	return saved, nil
}

// maxCascade acota los merchants suspendidos en cascada por llamada.
const maxCascade = 10000

// Reactivate sólo aplica a organizaciones suspendidas. Los merchants quedan
// suspendidos hasta que se activen uno por uno.
func (s *organizationService) Reactivate(ctx context.Context, id string) (*repository.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.Status != types.OrganizationSuspended {
		return nil, fmt.Errorf("%w: can only reactivate suspended organizations", ErrInvalidTransition)
	}
	org.Activate(s.now())
	saved, err := s.orgs.Save(ctx, org)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.OrganizationReactivated, logger.OrgID(id))
	return saved, nil
}
