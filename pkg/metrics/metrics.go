package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hms_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hms_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	VisitTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hms_visit_transitions_total",
			Help: "Visit status transitions applied",
		},
		[]string{"from", "to"},
	)

	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hms_payments_total",
			Help: "Successful payments recorded",
		},
		[]string{"method"},
	)

	PaymentAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hms_payment_amount_total",
			Help: "Sum of successful payment amounts",
		},
		[]string{"method"},
	)

	DispensedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hms_prescriptions_dispensed_total",
			Help: "Prescriptions dispensed by the pharmacy",
		},
		[]string{"tracked"},
	)

	LowStockItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hms_inventory_alert_items",
			Help: "Inventory items needing attention, by alert kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		VisitTransitionsTotal,
		PaymentsTotal,
		PaymentAmountTotal,
		DispensedTotal,
		LowStockItems,
	)
}

// RecordPayment counts one successful payment.
func RecordPayment(method string, amount float64) {
	PaymentsTotal.WithLabelValues(method).Inc()
	PaymentAmountTotal.WithLabelValues(method).Add(amount)
}
