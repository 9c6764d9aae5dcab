// Package metrics счётчики киоска для Prometheus (/metrics).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SerialLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kiosk_serial_lines_total",
			Help: "Lines received from the microcontroller",
		},
	)

	SerialWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_serial_writes_total",
			Help: "Writes to the microcontroller by result",
		},
		[]string{"status"},
	)

	Tickets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_tickets_total",
			Help: "Printed tickets by result",
		},
		[]string{"status"},
	)

	Payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_payments_total",
			Help: "Payment attempts by status and reason",
		},
		[]string{"status", "reason"},
	)

	PaymentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kiosk_payment_duration_seconds",
			Help:    "Duration of payment terminal invocations",
			Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120},
		},
	)
)

// Значения метки status
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result возвращает метку status для ошибки
func Result(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
