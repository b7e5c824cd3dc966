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
	"github.com/dropDatabas3/accounts/internal/security/password"
	"github.com/dropDatabas3/accounts/internal/validation"
)

const componentUsers = "accounts.users"

// UserService define el alta y administración de usuarios.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*repository.User, error)
	List(ctx context.Context, organizationID string, p ListParams) (Page[*repository.User], error)
	Get(ctx context.Context, id string) (*repository.User, error)
	Activate(ctx context.Context, id string) (*repository.User, error)
	Deactivate(ctx context.Context, id string) (*repository.User, error)
	Suspend(ctx context.Context, id string) (*repository.User, error)
}

type CreateUserInput struct {
	OrganizationID string
	Email          string
	Password       string
	Name           string
}

// UserDeps dependencias de UserService. Policy cero = password.DefaultPolicy.
type UserDeps struct {
	Users         repository.UserRepository
	Organizations repository.OrganizationRepository
	Hasher        *password.Hasher
	Policy        password.Policy
	Blacklist     *password.Blacklist
	Now           func() time.Time
}

type userService struct {
	deps UserDeps
}

func NewUserService(deps UserDeps) UserService {
	if deps.Policy == (password.Policy{}) {
		deps.Policy = password.DefaultPolicy
	}
	deps.Now = nowFunc(deps.Now)
	return &userService{deps: deps}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentUsers), logger.Op("Create"))

	// Paso 1: validar input
	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, err
	}
	name, err := validation.Name(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Policy.Check(in.Password); err != nil {
		return nil, err
	}
	if s.deps.Blacklist != nil && s.deps.Blacklist.Contains(in.Password) {
		return nil, &password.PolicyError{Reasons: []string{"blacklisted"}}
	}

	// Paso 2: la organización tiene que existir
	if _, err := s.deps.Organizations.Get(ctx, in.OrganizationID); err != nil {
		return nil, err
	}

	// Paso 3: hash + alta única por (email, organización)
	phc, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		log.Error("hash password failed", logger.Err(err))
		return nil, err
	}
	u := &repository.User{
		ID:             uuid.NewString(),
		Email:          email,
		OrganizationID: in.OrganizationID,
		PasswordHash:   phc,
		Name:           name,
		Status:         types.UserActive,
		CreatedAt:      s.deps.Now().UTC(),
	}
	unique := repository.Where(repository.UserColEmail, repository.Equals(email)).
		And(repository.UserColOrganizationID, repository.Equals(in.OrganizationID))
	saved, err := s.deps.Users.SaveUnique(ctx, u, unique)
	if err != nil {
		if repository.IsConflict(err) {
			return nil, fmt.Errorf("user %s already exists in organization: %w", email, repository.ErrConflict)
		}
		log.Error("create user failed", logger.Err(err))
		return nil, err
	}
	log.Info("user created", logger.UserID(saved.ID), logger.OrgID(saved.OrganizationID))
	audit.Log(ctx, audit.UserCreated, logger.UserID(saved.ID), logger.OrgID(saved.OrganizationID))
	return saved, nil
}

func (s *userService) List(ctx context.Context, organizationID string, p ListParams) (Page[*repository.User], error) {
	status, ok, err := statusFilter(p.Status, types.UserStatus.IsValid)
	if err != nil {
		return Page[*repository.User]{}, err
	}
	filters := repository.Where(repository.UserColOrganizationID, repository.Equals(organizationID))
	if ok {
		filters.And(repository.UserColStatus, repository.Equals(status))
	}
	return list[*repository.User](ctx, s.deps.Users, p, filters)
}

func (s *userService) Get(ctx context.Context, id string) (*repository.User, error) {
	return s.deps.Users.Get(ctx, id)
}

func (s *userService) Activate(ctx context.Context, id string) (*repository.User, error) {
	return s.transition(ctx, id, (*repository.User).Activate)
}

func (s *userService) Deactivate(ctx context.Context, id string) (*repository.User, error) {
	return s.transition(ctx, id, (*repository.User).Deactivate)
}

func (s *userService) Suspend(ctx context.Context, id string) (*repository.User, error) {
	return s.transition(ctx, id, (*repository.User).Suspend)
}

func (s *userService) transition(ctx context.Context, id string, apply func(*repository.User)) (*repository.User, error) {
	u, err := s.deps.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := u.Status
	apply(u)
	saved, err := s.deps.Users.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.UserStatusChanged,
		logger.UserID(id), logger.OrgID(saved.OrganizationID),
		zap.String("from", string(from)), zap.String("to", string(saved.Status)),
	)
	return saved, nil
}
