package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		CallbackVerifications,
		CallbacksClassified,
		CallbackListenerErrors,
	)
}

var (
	// result: verified|hash_mismatch|missing_signature
	CallbackVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_verifications_total",
			Help: "Inbound gateway callbacks by verification result.",
		},
		[]string{"result"},
	)

	// kind: success|failure
	CallbacksClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbacks_classified_total",
			Help: "Verified callbacks by payment outcome.",
		},
		[]string{"kind"},
	)

	CallbackListenerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_listener_errors_total",
			Help: "Errors returned by callback event listeners, by event type.",
		},
		[]string{"event"},
	)
)

func IncCallbackVerification(result string) {
	CallbackVerifications.WithLabelValues(norm(result)).Inc()
}

func IncCallbackClassified(kind string) {
	CallbacksClassified.WithLabelValues(norm(kind)).Inc()
}

func IncListenerError(event string) {
	CallbackListenerErrors.WithLabelValues(norm(event)).Inc()
}
