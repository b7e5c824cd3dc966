package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
)

// Métricas de persistencia, autenticación y HTTP. Viven en un paquete aparte
// para que los adapters de store y el servicio de auth no dependan de HTTP.

var (
	RepositoryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "accounts_repository_op_duration_ms",
		Help:    "Latencia de operaciones del gateway de persistencia en milisegundos",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
	}, []string{"backend", "entity", "op"})

	RepositoryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_repository_errors_total",
		Help: "Errores del gateway de persistencia por clase",
	}, []string{"backend", "entity", "op", "class"})

	AuthAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_auth_attempts_total",
		Help: "Intentos de autenticación por resultado",
	}, []string{"result"})

	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accounts_tokens_issued_total",
		Help: "Tokens de acceso emitidos (incluye refresh)",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo",
	})
)

// Resultados de autenticación para AuthAttempts.
const (
	AuthSuccess     = "success"
	AuthFailed      = "failed"
	AuthNotFound    = "not_found"
	AuthInactive    = "inactive"
	AuthRateLimited = "rate_limited"
)

// ObserveRepository registra la latencia de una operación y, si falló, su clase
// de error. err nil cuenta como éxito.
func ObserveRepository(backend, entity, op string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	RepositoryLatency.WithLabelValues(backend, entity, op).Observe(ms)
	if err != nil {
		RepositoryErrors.WithLabelValues(backend, entity, op, errorClass(err)).Inc()
	}
}

// ObserveAuth cuenta un intento de autenticación.
func ObserveAuth(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	case errors.Is(err, repository.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "repository"
	}
}

// Register registra las métricas en el registry dado (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		RepositoryLatency, RepositoryErrors, AuthAttempts, TokensIssued,
		HTTPRequests, HTTPDuration, HTTPInflight,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
