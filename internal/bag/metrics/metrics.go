package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for bag issuance and queries.
type Metrics struct {
	Claims         *prometheus.CounterVec
	ClaimLatency   *prometheus.HistogramVec
	Derivations    *prometheus.CounterVec
	QueryNotFound  *prometheus.CounterVec
	IssuancePaused prometheus.Gauge
}

// New registers collectors with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Claims: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_bag_claims_total",
			Help: "Total claim attempts, labeled by channel and outcome",
		}, []string{"channel", "outcome"}),
		ClaimLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loot_bag_claim_latency_seconds",
			Help:    "Latency of claim operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"channel"}),
		Derivations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_bag_trait_derivations_total",
			Help: "Trait derivations, labeled by category and rarity tier",
		}, []string{"category", "tier"}),
		QueryNotFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loot_bag_query_not_found_total",
			Help: "Queries against unclaimed identifiers, labeled by operation",
		}, []string{"operation"}),
		IssuancePaused: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loot_bag_issuance_paused",
			Help: "1 while issuance is paused, 0 otherwise",
		}),
	}
}

func (m *Metrics) IncrementClaim(channel, outcome string) {
	m.Claims.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveClaimLatency(channel string, durationSeconds float64) {
	m.ClaimLatency.WithLabelValues(channel).Observe(durationSeconds)
}

// ObserveDerivation satisfies pluck.Observer.
func (m *Metrics) ObserveDerivation(category string, tier int) {
	m.Derivations.WithLabelValues(category, strconv.Itoa(tier)).Inc()
}

func (m *Metrics) IncrementQueryNotFound(operation string) {
	m.QueryNotFound.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.IssuancePaused.Set(1)
		return
	}
	m.IssuancePaused.Set(0)
}
