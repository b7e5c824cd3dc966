// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/accounts/internal/http/helpers"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// Pinger lo implementa store.Manager.
type Pinger interface {
	Ping(ctx context.Context) error
}

type response struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Version string `json:"version,omitempty"`
}

// Controller maneja /healthz y /readyz.
type Controller struct {
	store   Pinger
	version string
	timeout time.Duration
}

func NewController(store Pinger, version string) *Controller {
	return &Controller{store: store, version: version, timeout: 2 * time.Second}
}

// Healthz maneja GET /healthz: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: además el storage responde al ping.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		logger.From(ctx).Warn("readiness check failed",
			logger.Layer("controller"), logger.Op("HealthController.Readyz"), logger.Err(err))
		helpers.WriteJSON(w, http.StatusServiceUnavailable, response{Status: "unavailable", Storage: "down", Version: c.version})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ready", Storage: "up", Version: c.version})
}
