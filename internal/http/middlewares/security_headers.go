package middlewares

import (
	"net/http"

	"github.com/unrolled/secure"

	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// WithSecurityHeaders agrega los headers de seguridad para una API JSON (no
// servimos HTML). En prod además exige HTTPS y manda HSTS.
func WithSecurityHeaders(prod bool) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		SSLRedirect:           prod,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		IsDevelopment:         !prod,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sec.Process(w, r); err != nil {
				// Process ya escribió la respuesta (redirect a HTTPS o host inválido).
				logger.From(r.Context()).Warn("secure headers blocked request", logger.Err(err))
				return
			}
			h := w.Header()
			h.Set("Cache-Control", "no-store")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			next.ServeHTTP(w, r)
		})
	}
}
