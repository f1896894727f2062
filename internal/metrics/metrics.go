package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Hangar
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  prometheus.CounterVec
	DBQueryDuration prometheus.HistogramVec
	DBConnections   prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	TenantSwitchesTotal   prometheus.Counter
	OperatorsCreatedTotal prometheus.Counter
	FlightsLoggedTotal    prometheus.Counter
	WebhookEventsTotal    prometheus.CounterVec
	WebhookDuration       prometheus.HistogramVec
	LinkCodesIssuedTotal  prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hangar_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hangar_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_db_queries_total",
				Help: "Total database queries by operation type",
			},
			[]string{"query_type"},
		),
		DBQueryDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hangar_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),
		DBConnections: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hangar_db_connections",
				Help: "Current number of database connections",
			},
			[]string{"state"},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		TenantSwitchesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hangar_tenant_switches_total",
				Help: "Total active-operator switches performed",
			},
		),
		OperatorsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hangar_operators_created_total",
				Help: "Total operators created",
			},
		),
		FlightsLoggedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hangar_flights_logged_total",
				Help: "Total flight records logged",
			},
		),
		WebhookEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hangar_webhook_events_total",
				Help: "Total billing webhook events by type and status code",
			},
			[]string{"event_type", "status_code"},
		),
		WebhookDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hangar_webhook_duration_seconds",
				Help:    "Billing webhook processing time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"event_type"},
		),
		LinkCodesIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hangar_link_codes_issued_total",
				Help: "Total Telegram link codes issued",
			},
		),
	}
}
