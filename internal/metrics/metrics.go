// Package metrics holds the Prometheus instruments of the donation backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks lifecycle transitions, view latency, bazaar cache
// efficiency and gateway read retries. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	ViewDuration   *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	GatewayRetries *prometheus.CounterVec
}

// New registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bazaar_donation_transitions_total",
			Help: "Donation lifecycle commands by action and outcome",
		}, []string{"action", "outcome"}),
		ViewDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bazaar_view_load_duration_seconds",
			Help:    "Duration of role-scoped donation view loads",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"view"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bazaar_list_cache_lookups_total",
			Help: "Bazaar list cache lookups by result",
		}, []string{"result"}),
		GatewayRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bazaar_gateway_read_retries_total",
			Help: "Persistence gateway read retries by operation",
		}, []string{"op"}),
	}
}

// Transition records the outcome of a lifecycle command.
func (m *Metrics) Transition(action, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, outcome).Inc()
}

// ObserveView records how long a view took to load.
// Call with time.Now() at the start of the load.
func (m *Metrics) ObserveView(view string, start time.Time) {
	if m == nil {
		return
	}
	m.ViewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// CacheHit records a bazaar list served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss records a bazaar list loaded from the gateway.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// GatewayRetry records one retried gateway read.
func (m *Metrics) GatewayRetry(op string) {
	if m == nil {
		return
	}
	m.GatewayRetries.WithLabelValues(op).Inc()
}
