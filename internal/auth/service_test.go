package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/domain/types"
	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
	"github.com/dropDatabas3/accounts/internal/rate"
	"github.com/dropDatabas3/accounts/internal/security/password"
	"github.com/dropDatabas3/accounts/internal/store/adapters/memory"
)

var fastParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc    *Service
	users  repository.UserRepository
	hasher *password.Hasher
	clk    *clock
}

func newFixture(t *testing.T, limiter rate.Limiter) *fixture {
	t.Helper()
	iss, err := jwt.NewIssuer(jwt.Settings{Secret: "auth-test-secret"})
	require.NoError(t, err)
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	iss.Now = clk.Now

	conn := memory.NewConnection()
	h := password.NewHasher(fastParams)
	svc := NewService(Deps{
		Users:   conn.Users(),
		Hasher:  h,
		Issuer:  iss,
		Limiter: limiter,
		Now:     clk.Now,
	})
	return &fixture{svc: svc, users: conn.Users(), hasher: h, clk: clk}
}

func (f *fixture) addUser(t *testing.T, id, email, secret string, status types.UserStatus) *repository.User {
	t.Helper()
	phc, err := f.hasher.Hash(secret)
	require.NoError(t, err)
	u, err := f.users.Save(context.Background(), &repository.User{
		ID:             id,
		Email:          email,
		OrganizationID: "org-1",
		PasswordHash:   phc,
		Name:           "Test",
		Status:         status,
		CreatedAt:      f.clk.Now(),
	})
	require.NoError(t, err)
	return u
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	u, err := f.svc.Authenticate(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.Equal(t, "u-alice", u.ID)
	require.Nil(t, u.LastLoginAt, "authenticate must not record a login")

	u, err = f.svc.Authenticate(ctx, "  ALICE@Example.com ", "Secret123!")
	require.NoError(t, err)
	require.Equal(t, "u-alice", u.ID)

	_, err = f.svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = f.svc.Authenticate(ctx, "bob@example.com", "x")
	require.ErrorIs(t, err, ErrPrincipalNotFound)
	require.True(t, IsCredentialsError(err))
}

func TestAuthenticate_Inactive(t *testing.T) {
	f := newFixture(t, nil)
	f.addUser(t, "u-carol", "carol@example.com", "Secret123!", types.UserSuspended)

	_, err := f.svc.Authenticate(context.Background(), "carol@example.com", "Secret123!")
	require.ErrorIs(t, err, ErrInactivePrincipal)

	// secreto incorrecto gana sobre estado
	_, err = f.svc.Authenticate(context.Background(), "carol@example.com", "nope")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticate_MalformedStoredHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	u.PasswordHash = "plaintext"
	_, err := f.users.Save(ctx, u)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "alice@example.com", "Secret123!")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticate_RehashesOutdatedHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	old := password.NewHasher(password.Params{Memory: 2048, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	phc, err := old.Hash("Secret123!")
	require.NoError(t, err)
	_, err = f.users.Save(ctx, &repository.User{
		ID: "u-alice", Email: "alice@example.com", PasswordHash: phc,
		Status: types.UserActive, CreatedAt: f.clk.Now(),
	})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)

	stored, err := f.users.Get(ctx, "u-alice")
	require.NoError(t, err)
	require.NotEqual(t, phc, stored.PasswordHash)
	needs, err := f.hasher.NeedsRehash(stored.PasswordHash)
	require.NoError(t, err)
	require.False(t, needs)
}

func TestIssueAndResolveSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	f.clk.Advance(time.Minute)
	u, err := f.svc.ResolveSession(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "u-alice", u.ID)
	require.NotNil(t, u.LastLoginAt)
	require.True(t, u.LastLoginAt.Equal(f.clk.Now()))

	stored, err := f.users.Get(ctx, "u-alice")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt, "last login must be persisted")
}

func TestIssueToken_InvalidPrincipal(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.IssueToken(context.Background(), &repository.User{Email: "x@example.com"})
	require.ErrorIs(t, err, ErrInvalidPrincipal)
	_, err = f.svc.IssueToken(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestResolveSession_Expired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	f.clk.Advance(AccessTokenTTL + time.Second)
	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestResolveSession_Garbage(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.ResolveSession(context.Background(), "not-a-token")
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestResolveSession_Deactivated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	alice.Deactivate()
	_, err = f.users.Save(ctx, alice)
	require.NoError(t, err)

	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, ErrInactivePrincipal)
}

func TestResolveSession_Mismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	// el email se reasigna a otro usuario
	_, err = f.users.Delete(ctx, "u-alice")
	require.NoError(t, err)
	f.addUser(t, "u-alice-2", "alice@example.com", "Other123!", types.UserActive)

	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, ErrTokenMismatch)
}

func TestResolveSession_Deleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	_, err = f.users.Delete(ctx, "u-alice")
	require.NoError(t, err)

	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	res, err := f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "Secret123!", OrganizationID: "org-1"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, int64(AccessTokenTTL.Seconds()), res.ExpiresIn)
	require.Equal(t, f.clk.Now().Add(AccessTokenTTL).Unix(), res.ExpiresAt.Unix())
	claims, err := f.svc.deps.Issuer.Decode(res.AccessToken)
	require.NoError(t, err)
	exp, ok := claims.ExpiresAt()
	require.True(t, ok)
	require.True(t, exp.Equal(res.ExpiresAt), "exp=%v expires_at=%v", exp, res.ExpiresAt)

	u, err := f.svc.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u-alice", u.ID)

	_, err = f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "Secret123!", OrganizationID: "org-2"})
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestLogin_RateLimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rate.NewMemoryLimiter(2, time.Minute))
	f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "bad"})
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	}
	_, err := f.svc.Login(ctx, Credentials{Email: "ALICE@example.com", Password: "Secret123!"})
	require.ErrorIs(t, err, ErrTooManyAttempts)

	var tooMany *TooManyAttemptsError
	require.True(t, errors.As(err, &tooMany))
	require.Greater(t, tooMany.RetryAfter, time.Duration(0))
}

func TestLogin_SuccessResetsLimiter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rate.NewMemoryLimiter(2, time.Minute))
	f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	_, err := f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "bad"})
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	// contador reseteado: dos intentos más disponibles
	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "bad"})
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	f.clk.Advance(10 * time.Minute)
	refreshed, err := f.svc.Refresh(ctx, tok)
	require.NoError(t, err)

	f.clk.Advance(25 * time.Minute) // el original ya expiró
	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, jwt.ErrExpiredToken)
	u, err := f.svc.ResolveSession(ctx, refreshed)
	require.NoError(t, err)
	require.Equal(t, "u-alice", u.ID)
}

func TestLogin_Audit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))
	f := newFixture(t, nil)
	f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)

	_, err := f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "nope"})
	require.Error(t, err)
	_, err = f.svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 2)

	failed := entries[0].ContextMap()
	require.Equal(t, "auth.login.failed", failed["event"])
	require.Equal(t, "bad_secret", failed["reason"])
	require.Equal(t, "a***@example.com", failed["email"])
	require.NotContains(t, entries[0].Message+fmt.Sprint(failed), "nope")

	require.Equal(t, "auth.login.succeeded", entries[1].ContextMap()["event"])
}

// deactivatingUsers devuelve el usuario leído y lo desactiva en el store
// antes de que el caller escriba, como haría un operador en paralelo.
type deactivatingUsers struct {
	repository.UserRepository
	t *testing.T
}

func (r deactivatingUsers) stale(u *repository.User, err error) (*repository.User, error) {
	if err != nil {
		return u, err
	}
	current, gerr := r.Get(context.Background(), u.ID)
	require.NoError(r.t, gerr)
	current.Deactivate()
	_, serr := r.Save(context.Background(), current)
	require.NoError(r.t, serr)
	return u, nil
}

func (r deactivatingUsers) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return r.stale(r.UserRepository.GetByEmail(ctx, email))
}

func (r deactivatingUsers) GetByEmailInOrganization(ctx context.Context, email, orgID string) (*repository.User, error) {
	return r.stale(r.UserRepository.GetByEmailInOrganization(ctx, email, orgID))
}

func TestResolveSession_ConcurrentDeactivationWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addUser(t, "u-alice", "alice@example.com", "Secret123!", types.UserActive)
	tok, err := f.svc.IssueToken(ctx, alice)
	require.NoError(t, err)

	f.svc.deps.Users = deactivatingUsers{UserRepository: f.users, t: t}
	_, err = f.svc.ResolveSession(ctx, tok)
	require.ErrorIs(t, err, ErrInactivePrincipal)

	stored, err := f.users.Get(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, types.UserInactive, stored.Status, "deactivation must not be overwritten")
	require.Nil(t, stored.LastLoginAt)
}

func TestAuthenticate_RehashKeepsConcurrentDeactivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	old := password.NewHasher(password.Params{Memory: 2048, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	phc, err := old.Hash("Secret123!")
	require.NoError(t, err)
	_, err = f.users.Save(ctx, &repository.User{
		ID: "u-alice", Email: "alice@example.com", PasswordHash: phc,
		Status: types.UserActive, CreatedAt: f.clk.Now(),
	})
	require.NoError(t, err)

	f.svc.deps.Users = deactivatingUsers{UserRepository: f.users, t: t}
	_, err = f.svc.Authenticate(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)

	stored, err := f.users.Get(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, types.UserInactive, stored.Status)
	require.Equal(t, phc, stored.PasswordHash, "rehash must not write over a changed principal")
}
