package store

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/domain/types"
)

// Repositorios tipados sobre un Gateway genérico. Los adapters sólo proveen
// el Gateway; las búsquedas por email/dominio/organización son comunes.

// UserRepo implementa repository.UserRepository.
type UserRepo struct {
	repository.Gateway[*repository.User]
}

// NewUserRepo envuelve un gateway de usuarios.
func NewUserRepo(g repository.Gateway[*repository.User]) *UserRepo {
	return &UserRepo{Gateway: g}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	email = normalizeEmail(email)
	u, found, err := r.FindOne(ctx, repository.Where(repository.UserColEmail, repository.Equals(email)))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NotFound("User", email)
	}
	return u, nil
}

func (r *UserRepo) GetByEmailInOrganization(ctx context.Context, email, organizationID string) (*repository.User, error) {
	email = normalizeEmail(email)
	f := repository.Where(repository.UserColEmail, repository.Equals(email)).
		And(repository.UserColOrganizationID, repository.Equals(organizationID))
	u, found, err := r.FindOne(ctx, f)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NotFound("User", organizationID+"/"+email)
	}
	return u, nil
}

// activeOnly condiciona las escrituras parciales al estado actual, así una
// desactivación concurrente nunca queda pisada.
func activeOnly() repository.Filters {
	return repository.Where(repository.UserColStatus, repository.Equals(string(types.UserActive)))
}

func (r *UserRepo) RecordLogin(ctx context.Context, id string, at time.Time) (*repository.User, bool, error) {
	set := repository.Record{repository.UserColLastLoginAt: at.UTC()}
	return r.Update(ctx, id, set, activeOnly())
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, phc string) (bool, error) {
	set := repository.Record{repository.UserColPasswordHash: phc}
	_, ok, err := r.Update(ctx, id, set, activeOnly())
	return ok, err
}

// OrganizationRepo implementa repository.OrganizationRepository.
type OrganizationRepo struct {
	repository.Gateway[*repository.Organization]
}

func NewOrganizationRepo(g repository.Gateway[*repository.Organization]) *OrganizationRepo {
	return &OrganizationRepo{Gateway: g}
}

func (r *OrganizationRepo) GetByDomain(ctx context.Context, domain string) (*repository.Organization, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	o, found, err := r.FindOne(ctx, repository.Where(repository.OrgColDomain, repository.Equals(domain)))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.NotFound("Organization", domain)
	}
	return o, nil
}

// MerchantRepo implementa repository.MerchantRepository.
type MerchantRepo struct {
	repository.Gateway[*repository.Merchant]
}

func NewMerchantRepo(g repository.Gateway[*repository.Merchant]) *MerchantRepo {
	return &MerchantRepo{Gateway: g}
}

// ListByOrganization agrega el filtro de organización a opts.
func (r *MerchantRepo) ListByOrganization(ctx context.Context, organizationID string, opts repository.ListOptions) ([]*repository.Merchant, error) {
	f := repository.Filters{}
	for k, v := range opts.Filters {
		f[k] = v
	}
	opts.Filters = f.And(repository.MerchantColOrganizationID, repository.Equals(organizationID))
	return r.ListAll(ctx, opts)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
