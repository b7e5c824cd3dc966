package middlewares

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// SessionResolver resuelve un bearer token a su usuario activo.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*repository.User, error)
}

// AdminTokenHeader es el header del token de operador.
const AdminTokenHeader = "X-Admin-Token"

// bearerToken extrae el token de "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func validAdminToken(r *http.Request, adminToken string) bool {
	got := r.Header.Get(AdminTokenHeader)
	return adminToken != "" && got != "" &&
		subtle.ConstantTimeCompare([]byte(got), []byte(adminToken)) == 1
}

// RequireAuth acepta el token de operador (si adminToken no está vacío) o un
// bearer token de sesión. Deja en el contexto el usuario o la marca de operador.
func RequireAuth(sessions SessionResolver, adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Header.Get(AdminTokenHeader) != "" {
				if !validAdminToken(r, adminToken) {
					logger.From(ctx).Warn("invalid admin token", logger.Component("http.auth"))
					httperrors.WriteError(w, httperrors.ErrUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(withOperator(ctx)))
				return
			}

			tok := bearerToken(r)
			if tok == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			u, err := sessions.ResolveSession(ctx, tok)
			if err != nil {
				httperrors.WriteError(w, err)
				return
			}
			ctx = WithUser(ctx, u)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(u.ID), logger.OrgID(u.OrganizationID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator deja pasar sólo requests autenticados como operador.
// Va después de RequireAuth.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsOperator(r.Context()) {
			httperrors.WriteError(w, httperrors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
