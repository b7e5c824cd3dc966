package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/accounts/internal/http/controllers/accounts"
	mw "github.com/dropDatabas3/accounts/internal/http/middlewares"
)

// registerAccountsRoutes registra organizaciones, usuarios y merchants. Todo
// requiere autenticación; el alta y el ciclo de vida de organizaciones y el
// estado de merchants son sólo de operador. El resto queda acotado a la
// organización del usuario dentro de los controllers.
func registerAccountsRoutes(r chi.Router, d Deps) {
	c := ctrl.NewControllers(d.Organizations, d.Users, d.Merchants)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Auth, d.AdminToken))

		r.Route("/organizations", func(r chi.Router) {
			r.With(mw.RequireOperator).Get("/", c.Organizations.List)
			r.With(mw.RequireOperator).Post("/", c.Organizations.Create)

			r.Route("/{"+ctrl.ParamOrganizationID+"}", func(r chi.Router) {
				r.Get("/", c.Organizations.Get)
				r.Patch("/", c.Organizations.Update)

				r.Group(func(r chi.Router) {
					r.Use(mw.RequireOperator)
					r.Post("/activate", c.Organizations.Activate)
					r.Post("/suspend", c.Organizations.Suspend)
					r.Post("/reactivate", c.Organizations.Reactivate)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", c.Users.List)
					r.Post("/", c.Users.Create)
					r.Route("/{"+ctrl.ParamUserID+"}", func(r chi.Router) {
						r.Get("/", c.Users.Get)
						r.Post("/activate", c.Users.Activate)
						r.Post("/deactivate", c.Users.Deactivate)
						r.Post("/suspend", c.Users.Suspend)
					})
				})

				r.Get("/merchants", c.Merchants.List)
				r.Post("/merchants", c.Merchants.Create)
			})
		})

		r.Route("/merchants/{"+ctrl.ParamMerchantID+"}", func(r chi.Router) {
			r.Get("/", c.Merchants.Get)

			r.Post("/payment-methods", c.Merchants.AddPaymentMethod)
			r.Delete("/payment-methods/{"+ctrl.ParamMethod+"}", c.Merchants.RemovePaymentMethod)

			r.Post("/api-keys", c.Merchants.IssueAPIKey)
			r.Post("/api-keys/revoke", c.Merchants.RevokeAPIKey)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireOperator)
				r.Post("/activate", c.Merchants.Activate)
				r.Post("/suspend", c.Merchants.Suspend)
				r.Post("/review", c.Merchants.Review)
			})
		})
	})
}
