package accounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/domain/types"
	"github.com/dropDatabas3/accounts/internal/security/password"
	tokens "github.com/dropDatabas3/accounts/internal/security/token"
	"github.com/dropDatabas3/accounts/internal/store/adapters/memory"
	"github.com/dropDatabas3/accounts/internal/validation"
)

type services struct {
	orgs      OrganizationService
	users     UserService
	merchants MerchantService
	conn      *memory.Connection
}

func newServices(t *testing.T) *services {
	t.Helper()
	conn := memory.NewConnection()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	now := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return &services{
		orgs: NewOrganizationService(conn.Organizations(), conn.Merchants(), now),
		users: NewUserService(UserDeps{
			Users:         conn.Users(),
			Organizations: conn.Organizations(),
			Hasher:        password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}),
			Blacklist:     password.NewBlacklist("Password123!"),
			Now:           now,
		}),
		merchants: NewMerchantService(conn.Merchants(), conn.Organizations(), now),
		conn:      conn,
	}
}

func (s *services) org(t *testing.T, domain string) *repository.Organization {
	t.Helper()
	o, err := s.orgs.Create(context.Background(), CreateOrganizationInput{Name: "Acme " + domain, Domain: domain})
	require.NoError(t, err)
	return o
}

func TestOrganizations_CreateAndUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	o, err := s.orgs.Create(ctx, CreateOrganizationInput{Name: "  Acme Corp ", Domain: "ACME.example"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", o.Name)
	assert.Equal(t, "acme.example", o.Domain)
	assert.Equal(t, types.OrganizationPending, o.Status)
	assert.NotEmpty(t, o.ID)

	_, err = s.orgs.Create(ctx, CreateOrganizationInput{Name: "Other", Domain: "acme.example"})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.orgs.Create(ctx, CreateOrganizationInput{Name: "X", Domain: "other.example"})
	require.ErrorIs(t, err, validation.ErrInvalidOrganizationName)
	_, err = s.orgs.Create(ctx, CreateOrganizationInput{Name: "Valid", Domain: "no_tld"})
	require.ErrorIs(t, err, validation.ErrInvalidDomain)
}

func TestOrganizations_Update(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	a := s.org(t, "a.example")
	s.org(t, "b.example")

	taken := "b.example"
	_, err := s.orgs.Update(ctx, a.ID, UpdateOrganizationInput{Domain: &taken})
	require.ErrorIs(t, err, repository.ErrConflict)

	same := "A.example"
	name := "Renamed"
	updated, err := s.orgs.Update(ctx, a.ID, UpdateOrganizationInput{Name: &name, Domain: &same})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "a.example", updated.Domain)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))

	_, err = s.orgs.Update(ctx, "missing", UpdateOrganizationInput{Name: &name})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrganizations_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")

	_, err := s.orgs.Reactivate(ctx, o.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	active, err := s.orgs.Activate(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrganizationActive, active.Status)

	m, err := s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: o.ID, Name: "Shop", CountryCode: "us", Currency: "usd"})
	require.NoError(t, err)

	suspended, err := s.orgs.Suspend(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrganizationSuspended, suspended.Status)

	got, err := s.merchants.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MerchantSuspended, got.Status, "suspend cascades to merchants")

	_, err = s.merchants.Activate(ctx, m.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	reactivated, err := s.orgs.Reactivate(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrganizationActive, reactivated.Status)

	_, err = s.merchants.Activate(ctx, m.ID)
	require.NoError(t, err)
}

func TestOrganizations_ListStatusFilter(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	a := s.org(t, "a.example")
	s.org(t, "b.example")
	s.org(t, "c.example")
	_, err := s.orgs.Activate(ctx, a.ID)
	require.NoError(t, err)

	page, err := s.orgs.List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)

	page, err = s.orgs.List(ctx, ListParams{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = s.orgs.List(ctx, ListParams{Status: "archived"})
	require.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestUsers_Create(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")

	u, err := s.users.Create(ctx, CreateUserInput{OrganizationID: o.ID, Email: " Alice@Example.com", Password: "Secret123!", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, types.UserActive, u.Status)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

	_, err = s.users.Create(ctx, CreateUserInput{OrganizationID: o.ID, Email: "alice@example.com", Password: "Secret123!", Name: "Again"})
	require.ErrorIs(t, err, repository.ErrConflict)

	// mismo email en otra organización está permitido
	other := s.org(t, "other.example")
	_, err = s.users.Create(ctx, CreateUserInput{OrganizationID: other.ID, Email: "alice@example.com", Password: "Secret123!", Name: "Alice"})
	require.NoError(t, err)
}

func TestUsers_CreateRejects(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")

	cases := map[string]struct {
		in   CreateUserInput
		want error
	}{
		"bad email":   {CreateUserInput{OrganizationID: o.ID, Email: "nope", Password: "Secret123!", Name: "A"}, validation.ErrInvalidEmail},
		"weak":        {CreateUserInput{OrganizationID: o.ID, Email: "a@example.com", Password: "short", Name: "A"}, password.ErrWeakPassword},
		"blacklisted": {CreateUserInput{OrganizationID: o.ID, Email: "a@example.com", Password: "Password123!", Name: "A"}, password.ErrWeakPassword},
		"no name":     {CreateUserInput{OrganizationID: o.ID, Email: "a@example.com", Password: "Secret123!", Name: " "}, validation.ErrInvalidName},
		"no org":      {CreateUserInput{OrganizationID: "missing", Email: "a@example.com", Password: "Secret123!", Name: "A"}, repository.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.users.Create(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
	n, err := s.conn.Users().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUsers_ListAndStatus(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")
	other := s.org(t, "other.example")

	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u, err := s.users.Create(ctx, CreateUserInput{OrganizationID: o.ID, Email: email, Password: "Secret123!", Name: "U"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	_, err := s.users.Create(ctx, CreateUserInput{OrganizationID: other.ID, Email: "z@example.com", Password: "Secret123!", Name: "Z"})
	require.NoError(t, err)

	u, err := s.users.Suspend(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, types.UserSuspended, u.Status)
	_, err = s.users.Deactivate(ctx, ids[2])
	require.NoError(t, err)

	page, err := s.users.List(ctx, o.ID, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, ids, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})

	page, err = s.users.List(ctx, o.ID, ListParams{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, ids[0], page.Items[0].ID)

	u, err = s.users.Activate(ctx, ids[2])
	require.NoError(t, err)
	assert.True(t, u.IsActive())

	_, err = s.users.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMerchants_CreateAndPaymentMethods(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")

	m, err := s.merchants.Create(ctx, CreateMerchantInput{
		OrganizationID: o.ID,
		Name:           "Acme Store",
		CountryCode:    "us",
		Currency:       "usd",
		PaymentMethods: []string{"card", "CARD", "bank_transfer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "US", m.CountryCode)
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, types.MerchantActive, m.Status)
	assert.Equal(t, []string{"card", "bank_transfer"}, m.PaymentMethods)

	m, err = s.merchants.AddPaymentMethod(ctx, m.ID, "wallet:mp")
	require.NoError(t, err)
	assert.Contains(t, m.PaymentMethods, "wallet:mp")

	m, err = s.merchants.RemovePaymentMethod(ctx, m.ID, "card")
	require.NoError(t, err)
	assert.NotContains(t, m.PaymentMethods, "card")

	_, err = s.merchants.RemovePaymentMethod(ctx, m.ID, "card")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.merchants.AddPaymentMethod(ctx, m.ID, "Not Valid!")
	require.ErrorIs(t, err, validation.ErrInvalidPaymentMethod)

	_, err = s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: o.ID, Name: "X", CountryCode: "USA", Currency: "usd"})
	require.ErrorIs(t, err, validation.ErrInvalidCountryCode)
	_, err = s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: "missing", Name: "X", CountryCode: "US", Currency: "USD"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMerchants_APIKeys(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	o := s.org(t, "acme.example")
	m, err := s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: o.ID, Name: "Shop", CountryCode: "AR", Currency: "ARS"})
	require.NoError(t, err)

	key, m, err := s.merchants.IssueAPIKey(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, tokens.IsAPIKey(key))
	assert.Equal(t, []string{key}, m.APIKeys)

	m, err = s.merchants.RevokeAPIKey(ctx, m.ID, key)
	require.NoError(t, err)
	assert.Empty(t, m.APIKeys)

	_, err = s.merchants.RevokeAPIKey(ctx, m.ID, key)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.merchants.Suspend(ctx, m.ID)
	require.NoError(t, err)
	_, _, err = s.merchants.IssueAPIKey(ctx, m.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMerchants_List(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	a := s.org(t, "a.example")
	b := s.org(t, "b.example")
	for i := 0; i < 3; i++ {
		_, err := s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: a.ID, Name: "A", CountryCode: "US", Currency: "USD"})
		require.NoError(t, err)
	}
	mb, err := s.merchants.Create(ctx, CreateMerchantInput{OrganizationID: b.ID, Name: "B", CountryCode: "US", Currency: "USD"})
	require.NoError(t, err)
	_, err = s.merchants.PutUnderReview(ctx, mb.ID)
	require.NoError(t, err)

	page, err := s.merchants.List(ctx, a.ID, ListParams{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 1)

	page, err = s.merchants.List(ctx, b.ID, ListParams{Status: "under_review"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, mb.ID, page.Items[0].ID)
}
