package middlewares

import (
	"context"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxUserKey      ctxKey = "user"
	ctxOperatorKey  ctxKey = "operator"
)

// WithUser inyecta el usuario autenticado en el contexto.
func WithUser(ctx context.Context, u *repository.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// GetUser devuelve el usuario autenticado o nil.
func GetUser(ctx context.Context) *repository.User {
	u, _ := ctx.Value(ctxUserKey).(*repository.User)
	return u
}

func withOperator(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxOperatorKey, true)
}

// IsOperator reporta si el request se autenticó con el token de operador.
func IsOperator(ctx context.Context) bool {
	ok, _ := ctx.Value(ctxOperatorKey).(bool)
	return ok
}

// CanAccessOrganization: el operador accede a todo; un usuario sólo a su
// propia organización.
func CanAccessOrganization(ctx context.Context, organizationID string) bool {
	if IsOperator(ctx) {
		return true
	}
	u := GetUser(ctx)
	return u != nil && organizationID != "" && u.OrganizationID == organizationID
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID devuelve el request ID o "".
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
