// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	orderReceipts  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restock_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restock_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	orderReceipts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restock_order_receipts_total",
			Help: "Order receipt attempts by outcome",
		},
		[]string{"outcome"},
	)

	reg.MustRegister(requestCounter, requestLatency, orderReceipts)

	return &Metrics{
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		orderReceipts:  orderReceipts,
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// OrderReceipt counts a receipt attempt.
func (m *Metrics) OrderReceipt(outcome string) {
	if m == nil {
		return
	}
	m.orderReceipts.WithLabelValues(outcome).Inc()
}
