// Package auth orquesta hasher, issuer y repositorio de usuarios: autentica
// credenciales, emite tokens y resuelve un token al usuario activo.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/audit"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/jwt"
	"github.com/dropDatabas3/accounts/internal/metrics"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
	"github.com/dropDatabas3/accounts/internal/rate"
	"github.com/dropDatabas3/accounts/internal/security/password"
	"github.com/dropDatabas3/accounts/internal/validation"
)

// AccessTokenTTL es la vida de los tokens que emite este servicio.
const AccessTokenTTL = 30 * time.Minute

// Deps contiene las dependencias del servicio.
type Deps struct {
	Users  repository.UserRepository
	Hasher *password.Hasher
	Issuer *jwt.Issuer

	// Limiter limita intentos de Login por email. nil = sin límite.
	Limiter rate.Limiter

	// AccessTTL default AccessTokenTTL.
	AccessTTL time.Duration

	// Now default time.Now.
	Now func() time.Time
}

// Service es stateless por llamada; seguro para uso concurrente.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.AccessTTL <= 0 {
		deps.AccessTTL = AccessTokenTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// Credentials identifica al usuario para Login. OrganizationID es opcional:
// vacío busca el email en cualquier organización.
type Credentials struct {
	Email          string
	Password       string
	OrganizationID string
}

// LoginResult es el resultado de un Login exitoso.
type LoginResult struct {
	User        *repository.User
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // segundos
	ExpiresAt   time.Time
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Service) lookup(ctx context.Context, email, organizationID string) (*repository.User, error) {
	var (
		u   *repository.User
		err error
	)
	if organizationID != "" {
		u, err = s.deps.Users.GetByEmailInOrganization(ctx, email, organizationID)
	} else {
		u, err = s.deps.Users.GetByEmail(ctx, email)
	}
	if repository.IsNotFound(err) {
		return nil, ErrPrincipalNotFound
	}
	return u, err
}

// Authenticate verifica email + secreto. No toca last-login: eso sólo ocurre
// en ResolveSession.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (*repository.User, error) {
	return s.authenticate(ctx, Credentials{Email: email, Password: secret})
}

func (s *Service) authenticate(ctx context.Context, in Credentials) (*repository.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Authenticate"),
	)

	// Paso 1: lookup
	email := normalizeEmail(in.Email)
	user, err := s.lookup(ctx, email, strings.TrimSpace(in.OrganizationID))
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			metrics.ObserveAuth(metrics.AuthNotFound)
			log.Debug("principal not found")
		}
		return nil, err
	}
	log = log.With(logger.UserID(user.ID), logger.OrgID(user.OrganizationID))

	// Paso 2: verificar secreto
	ok, err := s.deps.Hasher.Verify(in.Password, user.PasswordHash)
	switch {
	case errors.Is(err, password.ErrMalformedHash):
		log.Warn("stored password hash is malformed", logger.Err(err))
		metrics.ObserveAuth(metrics.AuthFailed)
		return nil, ErrAuthenticationFailed
	case err != nil:
		return nil, fmt.Errorf("auth: verify: %w", err)
	case !ok:
		log.Debug("password mismatch")
		metrics.ObserveAuth(metrics.AuthFailed)
		return nil, ErrAuthenticationFailed
	}

	// Paso 3: estado
	if !user.IsActive() {
		log.Info("inactive principal", zap.String("status", string(user.Status)))
		metrics.ObserveAuth(metrics.AuthInactive)
		return nil, ErrInactivePrincipal
	}

	s.rehashIfNeeded(ctx, log, user, in.Password)
	metrics.ObserveAuth(metrics.AuthSuccess)
	return user, nil
}

// rehashIfNeeded actualiza el hash si fue generado con otros parámetros.
// Un fallo acá no invalida el login.
func (s *Service) rehashIfNeeded(ctx context.Context, log *zap.Logger, user *repository.User, secret string) {
	needs, err := s.deps.Hasher.NeedsRehash(user.PasswordHash)
	if err != nil || !needs {
		return
	}
	phc, err := s.deps.Hasher.Hash(secret)
	if err != nil {
		log.Warn("rehash failed", logger.Err(err))
		return
	}
	ok, err := s.deps.Users.UpdatePasswordHash(ctx, user.ID, phc)
	if err != nil {
		log.Warn("rehash save failed", logger.Err(err))
		return
	}
	if !ok {
		log.Info("rehash skipped, principal changed status")
		return
	}
	user.PasswordHash = phc
	log.Info("password rehashed with current parameters")
}

// IssueToken emite un access token con user_id, email, status y organization_id.
func (s *Service) IssueToken(ctx context.Context, user *repository.User) (string, error) {
	tok, _, err := s.issue(ctx, user)
	return tok, err
}

func (s *Service) issue(ctx context.Context, user *repository.User) (string, time.Time, error) {
	if user == nil || user.ID == "" || user.Email == "" {
		return "", time.Time{}, ErrInvalidPrincipal
	}
	claims := jwt.Claims{
		jwt.ClaimUserID: user.ID,
		jwt.ClaimEmail:  user.Email,
		jwt.ClaimStatus: string(user.Status),
	}
	if user.OrganizationID != "" {
		claims[jwt.ClaimOrganizationID] = user.OrganizationID
	}
	tok, exp, err := s.deps.Issuer.IssueWithExpiry(claims, s.deps.AccessTTL)
	if err != nil {
		logger.From(ctx).Error("token issuance failed", logger.Component("auth"), logger.UserID(user.ID), logger.Err(err))
		return "", time.Time{}, err
	}
	metrics.TokensIssued.Inc()
	return tok, exp, nil
}

// ResolveSession decodifica el token, relee el usuario por email (nunca usa
// datos del token como fuente de verdad), chequea identidad y estado y
// registra el login.
func (s *Service) ResolveSession(ctx context.Context, token string) (*repository.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("ResolveSession"),
	)

	// Paso 1: decode
	claims, err := s.deps.Issuer.Decode(token)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			log.Warn("invalid token presented", logger.Err(err))
		}
		return nil, err
	}
	userID, okID := claims.String(jwt.ClaimUserID)
	email, okEmail := claims.String(jwt.ClaimEmail)
	if !okID || !okEmail {
		log.Warn("token without principal claims")
		return nil, fmt.Errorf("%w: missing principal claims", jwt.ErrInvalidToken)
	}
	orgID, _ := claims.String(jwt.ClaimOrganizationID)

	// Paso 2: relectura autoritativa
	user, err := s.lookup(ctx, normalizeEmail(email), orgID)
	if err != nil {
		return nil, err
	}
	log = log.With(logger.UserID(user.ID))

	// Paso 3: identidad y estado
	if user.ID != userID {
		log.Warn("token principal mismatch", zap.String("token_user_id", userID))
		return nil, ErrTokenMismatch
	}
	if !user.IsActive() {
		log.Info("inactive principal", zap.String("status", string(user.Status)))
		return nil, ErrInactivePrincipal
	}

	// Paso 4: last-login, condicionado a que siga activo
	saved, ok, err := s.deps.Users.RecordLogin(ctx, user.ID, s.deps.Now())
	switch {
	case repository.IsNotFound(err):
		return nil, ErrPrincipalNotFound
	case err != nil:
		log.Error("record login failed", logger.Err(err))
		return nil, err
	case !ok:
		log.Info("principal changed status during session resolution")
		return nil, ErrInactivePrincipal
	}
	return saved, nil
}

// Login es Authenticate + IssueToken, con límite de intentos por email si hay
// Limiter. Un error del limiter no bloquea el login.
func (s *Service) Login(ctx context.Context, in Credentials) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Component("auth"), logger.Op("Login"))
	key := "login:" + normalizeEmail(in.Email)

	masked := zap.String("email", validation.MaskEmail(in.Email))

	if s.deps.Limiter != nil {
		res, err := s.deps.Limiter.Allow(ctx, key)
		switch {
		case err != nil:
			log.Warn("login limiter unavailable", logger.Err(err))
		case !res.Allowed:
			metrics.ObserveAuth(metrics.AuthRateLimited)
			audit.Log(ctx, audit.LoginThrottled, masked)
			return nil, &TooManyAttemptsError{RetryAfter: res.RetryAfter}
		}
	}

	user, err := s.authenticate(ctx, in)
	if err != nil {
		if IsCredentialsError(err) {
			audit.Log(ctx, audit.LoginFailed, masked, zap.String("reason", failureReason(err)))
		}
		return nil, err
	}
	audit.Log(ctx, audit.LoginSucceeded, logger.UserID(user.ID), logger.OrgID(user.OrganizationID))
	if s.deps.Limiter != nil {
		if err := s.deps.Limiter.Reset(ctx, key); err != nil {
			log.Warn("login limiter reset failed", logger.Err(err))
		}
	}

	tok, exp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		User:        user,
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.deps.AccessTTL.Seconds()),
		ExpiresAt:   exp,
	}, nil
}

// Refresh re-emite el token con un exp nuevo. Errores del token de origen
// llegan envueltos en jwt.ErrIssuance.
func (s *Service) Refresh(ctx context.Context, token string) (string, error) {
	tok, err := s.deps.Issuer.Refresh(token, s.deps.AccessTTL)
	if err != nil {
		return "", err
	}
	metrics.TokensIssued.Inc()
	return tok, nil
}
