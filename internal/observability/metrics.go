// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	TokensFetched *prometheus.CounterVec
	FeedErrors    *prometheus.CounterVec

	// Evaluation metrics
	TokensEvaluated   prometheus.Counter
	TokensRejected    *prometheus.CounterVec
	TokensDiscovered  prometheus.Counter
	EvaluationErrors  *prometheus.CounterVec
	EvaluationLatency prometheus.Histogram

	// Event metrics
	EventsFired       *prometheus.CounterVec
	DevelopersBlocked prometheus.Counter
	BuysAttempted     prometheus.Counter
	BuysExecuted      prometheus.Counter
	NotificationsSent prometheus.Counter
	NotifyErrors      prometheus.Counter

	// Cycle metrics
	CyclesTotal   *prometheus.CounterVec
	CycleDuration prometheus.Histogram

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "coinbot"
	}

	return &Metrics{
		// Feed metrics
		TokensFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "tokens_fetched_total",
			Help:      "Total number of tokens fetched by source",
		}, []string{"source"}),
		FeedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "errors_total",
			Help:      "Total number of feed fetch errors by source",
		}, []string{"source"}),

		// Evaluation metrics
		TokensEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "tokens_evaluated_total",
			Help:      "Total number of tokens run through the pipeline",
		}),
		TokensRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "tokens_rejected_total",
			Help:      "Total number of tokens rejected by stage",
		}, []string{"stage"}),
		TokensDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "tokens_discovered_total",
			Help:      "Total number of first-sighting ledger records created",
		}),
		EvaluationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "errors_total",
			Help:      "Total number of evaluation errors by type",
		}, []string{"error_type"}),
		EvaluationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "latency_seconds",
			Help:      "Per-token evaluation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Event metrics
		EventsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "fired_total",
			Help:      "Total number of state transitions fired by type",
		}, []string{"event_type"}),
		DevelopersBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "developers_blacklisted_total",
			Help:      "Total number of developers auto-blacklisted",
		}),
		BuysAttempted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "buys_attempted_total",
			Help:      "Total number of pump buys attempted",
		}),
		BuysExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "buys_executed_total",
			Help:      "Total number of pump buys executed",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered",
		}),
		NotifyErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "notify_errors_total",
			Help:      "Total number of failed notification deliveries",
		}),

		// Cycle metrics
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Total number of poll cycles by status",
		}, []string{"status"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Poll cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Health metrics
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last successful poll cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTokensFetched adds to the fetched counter for a feed source.
func RecordTokensFetched(source string, count int) {
	DefaultMetrics.TokensFetched.WithLabelValues(source).Add(float64(count))
}

// RecordFeedError increments the feed error counter for a source.
func RecordFeedError(source string) {
	DefaultMetrics.FeedErrors.WithLabelValues(source).Inc()
}

// RecordEvaluation records one token evaluation and its latency.
func RecordEvaluation(seconds float64) {
	DefaultMetrics.TokensEvaluated.Inc()
	DefaultMetrics.EvaluationLatency.Observe(seconds)
}

// RecordRejection increments the rejection counter for a stage.
func RecordRejection(stage string) {
	DefaultMetrics.TokensRejected.WithLabelValues(stage).Inc()
}

// RecordDiscovery increments the first-sighting counter.
func RecordDiscovery() {
	DefaultMetrics.TokensDiscovered.Inc()
}

// RecordEvaluationError records an evaluation error by type.
func RecordEvaluationError(errorType string) {
	DefaultMetrics.EvaluationErrors.WithLabelValues(errorType).Inc()
}

// RecordEventFired increments the transition counter for an event type.
func RecordEventFired(eventType string) {
	DefaultMetrics.EventsFired.WithLabelValues(eventType).Inc()
}

// RecordBuy records a buy attempt and whether it executed.
func RecordBuy(executed bool) {
	DefaultMetrics.BuysAttempted.Inc()
	if executed {
		DefaultMetrics.BuysExecuted.Inc()
	}
}

// RecordNotification records a notification delivery attempt.
func RecordNotification(err error) {
	if err != nil {
		DefaultMetrics.NotifyErrors.Inc()
		return
	}
	DefaultMetrics.NotificationsSent.Inc()
}

// RecordCycle records a poll cycle run.
func RecordCycle(status string, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
}
