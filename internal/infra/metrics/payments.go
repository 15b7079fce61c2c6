package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsAmountTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (initiated/succeeded/failed).",
		},
		[]string{"status"},
	)

	paymentsAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_amount_total",
			Help: "Sum of initiated payment amounts in the smallest currency unit, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddInitiatedAmount(currency string, amount int64) {
	paymentsAmountTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
