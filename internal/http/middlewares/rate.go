package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
)

// WithIPRateLimit limita requests por IP con una ventana deslizante en memoria.
// El límite por email del login vive en auth.Service; esto frena barridos
// sobre muchos emails desde una misma IP.
func WithIPRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			e := httperrors.ErrRateLimitExceeded
			e = e.WithDetail("per-ip limit reached")
			e.RetryAfter = window
			httperrors.WriteError(w, e)
		}),
	)
}
