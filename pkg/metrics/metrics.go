// Package metrics provides Prometheus metrics for the matchup
// simulator service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimMetrics collects and exposes simulator-related Prometheus metrics.
type SimMetrics struct {
	registry *prometheus.Registry

	// Upstream API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Baseline metrics
	BaselineFetches *prometheus.CounterVec

	// Local recompute metrics
	RecomputesTotal   prometheus.Counter
	RecomputeDuration prometheus.Histogram

	// Session metrics
	ActiveSessions prometheus.Gauge
}

// NewSimMetrics creates a new metrics collector with its own registry.
func NewSimMetrics() *SimMetrics {
	registry := prometheus.NewRegistry()

	m := &SimMetrics{
		registry: registry,

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchup_upstream_requests_total",
				Help: "Total requests to the remote simulation API",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchup_upstream_latency_seconds",
				Help:    "Latency of remote simulation API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		BaselineFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchup_baseline_fetches_total",
				Help: "Baseline simulation fetches by outcome",
			},
			[]string{"sport", "status"},
		),
		RecomputesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matchup_recomputes_total",
				Help: "Local re-simulations triggered by slider changes",
			},
		),
		RecomputeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "matchup_recompute_duration_seconds",
				Help:    "Duration of local re-simulation",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 8),
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "matchup_active_sessions",
				Help: "Number of live what-if sessions",
			},
		),
	}

	registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.BaselineFetches,
		m.RecomputesTotal,
		m.RecomputeDuration,
		m.ActiveSessions,
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *SimMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveUpstream records one upstream API call.
func (m *SimMetrics) ObserveUpstream(endpoint, status string, elapsed time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, status).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRecompute records one local re-simulation.
func (m *SimMetrics) ObserveRecompute(elapsed time.Duration) {
	m.RecomputesTotal.Inc()
	m.RecomputeDuration.Observe(elapsed.Seconds())
}
