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
	tokens "github.com/dropDatabas3/accounts/internal/security/token"
	"github.com/dropDatabas3/accounts/internal/validation"
)

const componentMerchants = "accounts.merchants"

// MerchantService define las operaciones sobre merchants.
type MerchantService interface {
	List(ctx context.Context, organizationID string, p ListParams) (Page[*repository.Merchant], error)
	Get(ctx context.Context, id string) (*repository.Merchant, error)
	Create(ctx context.Context, in CreateMerchantInput) (*repository.Merchant, error)
	AddPaymentMethod(ctx context.Context, id, method string) (*repository.Merchant, error)
	RemovePaymentMethod(ctx context.Context, id, method string) (*repository.Merchant, error)

	// IssueAPIKey genera una key nueva. La key en claro sólo se devuelve acá.
	IssueAPIKey(ctx context.Context, id string) (string, *repository.Merchant, error)
	RevokeAPIKey(ctx context.Context, id, key string) (*repository.Merchant, error)

	Activate(ctx context.Context, id string) (*repository.Merchant, error)
	Suspend(ctx context.Context, id string) (*repository.Merchant, error)
	PutUnderReview(ctx context.Context, id string) (*repository.Merchant, error)
}

type CreateMerchantInput struct {
	OrganizationID string
	Name           string
	Description    string
	CountryCode    string
	Currency       string
	PaymentMethods []string
	Metadata       map[string]any
}

type merchantService struct {
	merchants repository.MerchantRepository
	orgs      repository.OrganizationRepository
	now       func() time.Time
}

func NewMerchantService(merchants repository.MerchantRepository, orgs repository.OrganizationRepository, now func() time.Time) MerchantService {
	return &merchantService{merchants: merchants, orgs: orgs, now: nowFunc(now)}
}

func (s *merchantService) List(ctx context.Context, organizationID string, p ListParams) (Page[*repository.Merchant], error) {
	status, ok, err := statusFilter(p.Status, types.MerchantStatus.IsValid)
	if err != nil {
		return Page[*repository.Merchant]{}, err
	}
	filters := repository.Where(repository.MerchantColOrganizationID, repository.Equals(organizationID))
	if ok {
		filters.And(repository.MerchantColStatus, repository.Equals(status))
	}
	return list[*repository.Merchant](ctx, s.merchants, p, filters)
}

func (s *merchantService) Get(ctx context.Context, id string) (*repository.Merchant, error) {
	return s.merchants.Get(ctx, id)
}

func (s *merchantService) Create(ctx context.Context, in CreateMerchantInput) (*repository.Merchant, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentMerchants), logger.Op("Create"))

	name, err := validation.Name(in.Name)
	if err != nil {
		return nil, err
	}
	country, err := validation.CountryCode(in.CountryCode)
	if err != nil {
		return nil, err
	}
	currency, err := validation.Currency(in.Currency)
	if err != nil {
		return nil, err
	}
	methods := make([]string, 0, len(in.PaymentMethods))
	for _, raw := range in.PaymentMethods {
		m, err := validation.PaymentMethod(raw)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}

	org, err := s.orgs.Get(ctx, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org.Status == types.OrganizationSuspended {
		return nil, fmt.Errorf("%w: organization %s is suspended", ErrInvalidTransition, org.ID)
	}

	now := s.now().UTC()
	m := &repository.Merchant{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		Name:           name,
		Description:    in.Description,
		CountryCode:    country,
		Currency:       currency,
		Status:         types.MerchantActive,
		Metadata:       in.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, method := range methods {
		m.AddPaymentMethod(method, now)
	}
	saved, err := s.merchants.Save(ctx, m)
	if err != nil {
		log.Error("create merchant failed", logger.Err(err))
		return nil, err
	}
	log.Info("merchant created", logger.MerchantID(saved.ID), logger.OrgID(org.ID))
	audit.Log(ctx, audit.MerchantCreated, logger.MerchantID(saved.ID), logger.OrgID(org.ID))
	return saved, nil
}

// mutate lee, aplica y guarda. apply devuelve un error para abortar sin guardar.
func (s *merchantService) mutate(ctx context.Context, id string, apply func(*repository.Merchant, time.Time) error) (*repository.Merchant, error) {
	m, err := s.merchants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(m, s.now()); err != nil {
		return nil, err
	}
	return s.merchants.Save(ctx, m)
}

// AddPaymentMethod es idempotente: agregar un método existente no es error.
func (s *merchantService) AddPaymentMethod(ctx context.Context, id, method string) (*repository.Merchant, error) {
	method, err := validation.PaymentMethod(method)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(m *repository.Merchant, now time.Time) error {
		m.AddPaymentMethod(method, now)
		return nil
	})
}

func (s *merchantService) RemovePaymentMethod(ctx context.Context, id, method string) (*repository.Merchant, error) {
	return s.mutate(ctx, id, func(m *repository.Merchant, now time.Time) error {
		if !m.RemovePaymentMethod(method, now) {
			return repository.NotFound("PaymentMethod", method)
		}
		return nil
	})
}

func (s *merchantService) IssueAPIKey(ctx context.Context, id string) (string, *repository.Merchant, error) {
	key, err := tokens.NewAPIKey()
	if err != nil {
		return "", nil, err
	}
	m, err := s.mutate(ctx, id, func(m *repository.Merchant, now time.Time) error {
		if m.Status == types.MerchantSuspended {
			return fmt.Errorf("%w: merchant is suspended", ErrInvalidTransition)
		}
		m.AddAPIKey(key, now)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	audit.Log(ctx, audit.APIKeyIssued,
		logger.MerchantID(id),
		logger.OrgID(m.OrganizationID),
		zap.String("api_key", validation.MaskAPIKey(key)),
	)
	return key, m, nil
}

func (s *merchantService) RevokeAPIKey(ctx context.Context, id, key string) (*repository.Merchant, error) {
	m, err := s.mutate(ctx, id, func(m *repository.Merchant, now time.Time) error {
		if !m.RemoveAPIKey(key, now) {
			return repository.NotFound("APIKey", validation.MaskAPIKey(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.APIKeyRevoked,
		logger.MerchantID(id),
		logger.OrgID(m.OrganizationID),
		zap.String("api_key", validation.MaskAPIKey(key)),
	)
	return m, nil
}

// changeStatus es mutate más el evento de auditoría con el estado previo.
func (s *merchantService) changeStatus(ctx context.Context, id string, apply func(*repository.Merchant, time.Time) error) (*repository.Merchant, error) {
	var from types.MerchantStatus
	m, err := s.mutate(ctx, id, func(m *repository.Merchant, now time.Time) error {
		from = m.Status
		return apply(m, now)
	})
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.MerchantStatusChanged,
		logger.MerchantID(id),
		logger.OrgID(m.OrganizationID),
		zap.String("from", string(from)),
		zap.String("to", string(m.Status)),
	)
	return m, nil
}

func (s *merchantService) Activate(ctx context.Context, id string) (*repository.Merchant, error) {
	return s.changeStatus(ctx, id, func(m *repository.Merchant, now time.Time) error {
		org, err := s.orgs.Get(ctx, m.OrganizationID)
		if err != nil {
			return err
		}
		if org.Status == types.OrganizationSuspended {
			return fmt.Errorf("%w: organization %s is suspended", ErrInvalidTransition, org.ID)
		}
		m.Activate(now)
		return nil
	})
}

func (s *merchantService) Suspend(ctx context.Context, id string) (*repository.Merchant, error) {
	return s.changeStatus(ctx, id, func(m *repository.Merchant, now time.Time) error {
		m.Suspend(now)
		return nil
	})
}

func (s *merchantService) PutUnderReview(ctx context.Context, id string) (*repository.Merchant, error) {
	return s.changeStatus(ctx, id, func(m *repository.Merchant, now time.Time) error {
		m.PutUnderReview(now)
		return nil
	})
}
