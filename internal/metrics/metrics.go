// Package metrics defines Prometheus metrics for the alert processor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aiops"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Ingestion metrics.
var (
	AlertsReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_received_total",
		Help:      "Total number of alerts received, by status.",
	}, []string{"status"})

	AlertsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_queued_total",
		Help:      "Total number of firing alerts enqueued for analysis.",
	})

	AlertsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_dropped_total",
		Help:      "Total number of queued alerts discarded at shutdown.",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Alerts waiting or in flight.",
	})
)

// Analysis metrics.
var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of alert analyses, by outcome.",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	BackendQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_queries_total",
		Help:      "Total number of metrics/logs backend queries, by result.",
	}, []string{"backend", "result"})

	LLMAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_attempts_total",
		Help:      "Total number of LLM call attempts, by result.",
	}, []string{"result"})
)

// Notification metrics.
var (
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification deliveries, by channel and result.",
	}, []string{"channel", "result"})
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
