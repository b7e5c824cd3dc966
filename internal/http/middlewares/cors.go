package middlewares

import (
	"net/http"
	"slices"
	"strings"
)

// WithCORS responde CORS sólo para los orígenes listados ("*" = cualquiera).
// La API usa bearer tokens, así que nunca manda Allow-Credentials.
func WithCORS(allowed []string) func(http.Handler) http.Handler {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	origins := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if a = trim(a); a != "" {
			origins = append(origins, strings.ToLower(a))
		}
	}
	wildcard := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := trim(r.Header.Get("Origin"))
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin == "" || !(wildcard || slices.Contains(origins, strings.ToLower(origin))) {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After, Location, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")

			// preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, "+AdminTokenHeader)
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
