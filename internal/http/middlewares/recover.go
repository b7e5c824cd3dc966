package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// WithRecover captura panics y responde 500 en lugar de cortar la conexión.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("panic recovered",
					logger.Op("recover"),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				httperrors.WriteError(w, httperrors.ErrInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
