package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks outbound calls to the ledger gateway.
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_gateway_requests_total",
			Help: "Total number of ledger gateway requests made (by operation and result).",
		},
		[]string{"operation", "result"}, // result = "ok" | "error"
	)

	// Measures duration of ledger gateway calls.
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_gateway_request_duration_seconds",
			Help:    "Duration of ledger gateway requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"operation"},
	)

	// Tracks lifecycle transitions by operation and result.
	LifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_lifecycle_transitions_total",
			Help: "Total number of product lifecycle transitions attempted.",
		},
		[]string{"operation", "result"}, // result = "ok" | "error" | "gateway_failed"
	)

	// Measures NATS publish latency by subject.
	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Latency of NATS publishes in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"subject"},
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)
)

// ObserveGateway records a gateway call duration and its outcome.
func ObserveGateway(operation string, start time.Time, err error) {
	GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	GatewayRequestsTotal.WithLabelValues(operation, result).Inc()
}

// IncTransition records a lifecycle transition attempt.
func IncTransition(operation, result string) {
	LifecycleTransitionsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveDuration records elapsed time since start on a labeled histogram.
func ObserveDuration(h *prometheus.HistogramVec, start time.Time, label string) {
	h.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// IncNATSMessage records a NATS publish outcome.
func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}
