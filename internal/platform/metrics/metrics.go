// Package metrics holds process-wide HTTP collectors. Bag issuance metrics
// live in internal/bag/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus collectors.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	AuthFailures    *prometheus.CounterVec
}

// New creates and registers the collectors with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loot_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_http_requests_total",
			Help: "HTTP requests by route pattern and status class",
		}, []string{"endpoint", "status"}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_auth_failures_total",
			Help: "Rejected caller tokens by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) IncrementRequest(endpoint, status string) {
	m.Requests.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) IncrementAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}
