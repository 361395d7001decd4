package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Hangar
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Compliance Metrics
	NotificationsCompletedTotal  prometheus.Counter
	NotificationsSpawnedTotal    *prometheus.CounterVec
	ComplianceSavedTotal         *prometheus.CounterVec
	SecondaryEffectFailuresTotal *prometheus.CounterVec
	AlertEvaluationsTotal        *prometheus.CounterVec
	SummaryRecomputeDuration     prometheus.Histogram
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all
// metrics registered on reg. Pass prometheus.DefaultRegisterer in the server
// and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hangar_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hangar_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Compliance Metrics
		NotificationsCompletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hangar_notifications_completed_total",
				Help: "Total notifications marked completed",
			},
		),
		NotificationsSpawnedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_notifications_spawned_total",
				Help: "Next-occurrence notifications inserted, by due basis",
			},
			[]string{"basis"},
		),
		ComplianceSavedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_compliance_saved_total",
				Help: "Directive compliance events saved, by compliance status",
			},
			[]string{"status"},
		),
		SecondaryEffectFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_secondary_effect_failures_total",
				Help: "Derived bookkeeping failures that did not fail the primary action",
			},
			[]string{"operation"},
		),
		AlertEvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_alert_evaluations_total",
				Help: "Alert evaluations by resulting state",
			},
			[]string{"state"},
		),
		SummaryRecomputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hangar_summary_recompute_duration_seconds",
				Help:    "Aircraft directive status recompute time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
	}
}

// The helpers below tolerate a nil registry so services can run without
// metrics in tests and tools.

func (m *MetricsRegistry) NotificationCompleted() {
	if m == nil {
		return
	}
	m.NotificationsCompletedTotal.Inc()
}

func (m *MetricsRegistry) NotificationSpawned(basis string) {
	if m == nil {
		return
	}
	m.NotificationsSpawnedTotal.WithLabelValues(basis).Inc()
}

func (m *MetricsRegistry) ComplianceSaved(status string) {
	if m == nil {
		return
	}
	m.ComplianceSavedTotal.WithLabelValues(status).Inc()
}

func (m *MetricsRegistry) SecondaryFailure(operation string) {
	if m == nil {
		return
	}
	m.SecondaryEffectFailuresTotal.WithLabelValues(operation).Inc()
}

func (m *MetricsRegistry) AlertEvaluated(state string) {
	if m == nil {
		return
	}
	m.AlertEvaluationsTotal.WithLabelValues(state).Inc()
}

func (m *MetricsRegistry) ObserveRecompute(seconds float64) {
	if m == nil {
		return
	}
	m.SummaryRecomputeDuration.Observe(seconds)
}

func (m *MetricsRegistry) CacheHit(pattern string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) CacheMiss(pattern string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}
