package router

import (
	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/accounts/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/accounts/internal/http/middlewares"
)

// registerAuthRoutes: login y refresh son públicos (con límite por IP), /me
// requiere sesión.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := authctrl.NewController(d.Auth)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.IPLimit > 0 && d.IPWindow > 0 {
				r.Use(mw.WithIPRateLimit(d.IPLimit, d.IPWindow))
			}
			r.Post("/login", c.Login)
			r.Post("/refresh", c.Refresh)
		})
		r.With(mw.RequireAuth(d.Auth, d.AdminToken)).Get("/me", c.Me)
	})
}
