package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		GatewayRequests,
		GatewayDuration,
	)
}

var (
	// Outbound gateway calls by operation and bounded outcome.
	// operation: initiate|status
	// outcome: ok|transport_error|protocol_error|invalid_argument
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Outbound wallet gateway calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Latency of outbound wallet gateway calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)
)

func ObserveGatewayCall(operation, outcome string, d time.Duration) {
	GatewayRequests.WithLabelValues(norm(operation), norm(outcome)).Inc()
	GatewayDuration.WithLabelValues(norm(operation)).Observe(d.Seconds())
}
