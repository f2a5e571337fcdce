package prometheus

import (
	"time"

	"srm-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Dispatch metrics
	ActionsCounter *prometheus.CounterVec

	// Menu resolution outcomes: denied / full / fallback_open / filtered.
	// fallback_open counts the anti-lockout cases where absent or empty
	// role configuration widened visibility to the full set.
	MenuResolutionsCounter *prometheus.CounterVec

	// Lifecycle and tag mutation metrics
	LifecycleTransitionsCounter *prometheus.CounterVec
	TagMutationsCounter         *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	ActionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_actions_total",
			Help: "Total number of dispatched actions",
		},
		[]string{"action", "outcome"},
	)

	MenuResolutionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_menu_resolutions_total",
			Help: "Total number of menu resolutions by outcome",
		},
		[]string{"terminal", "outcome"},
	)

	LifecycleTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_lifecycle_transitions_total",
			Help: "Total number of supplier lifecycle transition attempts",
		},
		[]string{"event", "outcome"},
	)

	TagMutationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tag_mutations_total",
			Help: "Total number of reputation tag mutations",
		},
		[]string{"action"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAction increments the counter for dispatched actions
func RecordAction(action, outcome string) {
	if ActionsCounter == nil {
		return
	}
	ActionsCounter.WithLabelValues(action, outcome).Inc()
}

// RecordMenuResolution increments the counter for menu resolution outcomes
func RecordMenuResolution(terminal, outcome string) {
	if MenuResolutionsCounter == nil {
		return
	}
	MenuResolutionsCounter.WithLabelValues(terminal, outcome).Inc()
}

// RecordLifecycleTransition increments the counter for lifecycle transition attempts
func RecordLifecycleTransition(event, outcome string) {
	if LifecycleTransitionsCounter == nil {
		return
	}
	LifecycleTransitionsCounter.WithLabelValues(event, outcome).Inc()
}

// RecordTagMutation increments the counter for reputation tag mutations
func RecordTagMutation(action string) {
	if TagMutationsCounter == nil {
		return
	}
	TagMutationsCounter.WithLabelValues(action).Inc()
}
