package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the directory
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Database Metrics
	DBConnections prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	CommunitiesCreatedTotal prometheus.Counter
	MembershipEventsTotal   prometheus.CounterVec
	RoleChangesTotal        prometheus.CounterVec
	UsersRegisteredTotal    prometheus.Counter
	LoginAttemptsTotal      prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in the server and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "directory_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "directory_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBConnections: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "directory_db_connections",
				Help: "Current number of database connections",
			},
			[]string{"state"},
		),

		// Cache Metrics
		CacheHitsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		CommunitiesCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "directory_communities_created_total",
				Help: "Total communities created",
			},
		),
		MembershipEventsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_membership_events_total",
				Help: "Membership changes by action (joined, left, removed, invited)",
			},
			[]string{"action"},
		),
		RoleChangesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_role_changes_total",
				Help: "Role changes by the role granted",
			},
			[]string{"new_role"},
		),
		UsersRegisteredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "directory_users_registered_total",
				Help: "Total user accounts registered",
			},
		),
		LoginAttemptsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// The helpers below tolerate a nil registry so services can run without metrics.

func (m *MetricsRegistry) CommunityCreated() {
	if m == nil {
		return
	}
	m.CommunitiesCreatedTotal.Inc()
}

func (m *MetricsRegistry) MembershipEvent(action string) {
	if m == nil {
		return
	}
	m.MembershipEventsTotal.WithLabelValues(action).Inc()
}

func (m *MetricsRegistry) RoleChanged(newRole string) {
	if m == nil {
		return
	}
	m.RoleChangesTotal.WithLabelValues(newRole).Inc()
}

func (m *MetricsRegistry) UserRegistered() {
	if m == nil {
		return
	}
	m.UsersRegisteredTotal.Inc()
}

func (m *MetricsRegistry) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) CacheLookup(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}
