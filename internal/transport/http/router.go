// Package httptransport assembles the HTTP router: the shared middleware
// chain, health and metrics endpoints, and the bag routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loot/internal/bag/handler"
	"loot/internal/platform/health"
	"loot/internal/platform/metrics"
	"loot/internal/platform/middleware"
	"loot/pkg/domain"
	"loot/pkg/validation"
)

// DefaultRequestTimeout bounds a request when RouterDeps leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Bags           *handler.Handler
	Health         *health.Handler
	Tokens         middleware.TokenValidator
	Admin          domain.Address
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	if d.Metrics != nil {
		r.Use(middleware.Latency(d.Metrics))
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.BodyLimit(validation.MaxBodySize))
	r.Use(middleware.ContentTypeJSON)

	if d.Health != nil {
		d.Health.Register(r)
	}
	r.Handle("/metrics", metricsHandler)

	var failures middleware.AuthFailureCounter
	if d.Metrics != nil {
		failures = d.Metrics
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens, failures, logger))
		d.Bags.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCaller(logger))
			d.Bags.RegisterClaims(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCaller(logger))
			r.Use(middleware.RequireAdmin(d.Admin, logger))
			d.Bags.RegisterAdmin(r)
		})
	})

	return r
}
