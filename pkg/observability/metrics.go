// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the artikel service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for a database-backed
// JSON API, ranging from 1ms to 10s.
var APIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artikel_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artikel_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// LoginsTotal counts token exchanges by strategy and outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artikel_logins_total",
			Help: "Login attempts",
		},
		[]string{"strategy", "status"},
	)

	// StoreErrorsTotal counts unexpected storage failures surfaced as 5xx.
	StoreErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artikel_store_errors_total",
			Help: "Storage errors",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginsTotal,
		StoreErrorsTotal,
	)
}
