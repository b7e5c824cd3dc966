// Package router define las rutas HTTP del servicio.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	svc "github.com/dropDatabas3/accounts/internal/accounts"
	authctrl "github.com/dropDatabas3/accounts/internal/http/controllers/auth"
	"github.com/dropDatabas3/accounts/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	mw "github.com/dropDatabas3/accounts/internal/http/middlewares"
)

// AuthService es lo que el router necesita del orquestador de autenticación.
type AuthService interface {
	authctrl.Service
	mw.SessionResolver
}

// Deps dependencias del router.
type Deps struct {
	Auth          AuthService
	Organizations svc.OrganizationService
	Users         svc.UserService
	Merchants     svc.MerchantService
	Store         health.Pinger

	// AdminToken habilita el operador vía X-Admin-Token. Vacío = sin operador.
	AdminToken  string
	CORSOrigins []string
	Prod        bool
	Version     string

	// IPLimit <= 0 desactiva el límite por IP en /v1/auth.
	IPLimit  int
	IPWindow time.Duration

	// Metrics sirve /metrics; nil = promhttp.Handler().
	Metrics http.Handler
}

// New arma el handler completo con los middlewares globales.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID,
		mw.WithLogging,
		mw.WithRecover,
		mw.WithMetrics,
		mw.WithSecurityHeaders(d.Prod),
		mw.WithCORS(d.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	hc := health.NewController(d.Store, d.Version)
	r.Get("/healthz", hc.Healthz)
	r.Get("/readyz", hc.Readyz)

	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		registerAuthRoutes(r, d)
		registerAccountsRoutes(r, d)
	})
	return r
}
