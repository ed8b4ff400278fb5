package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for HH client operations.
var (
	hhRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_requests_total",
		Help: "Total HH API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	hhRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hh_request_duration_seconds",
		Help:    "HH API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	hhErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_errors_total",
		Help: "Total HH API errors by class",
	}, []string{"class"})

	hhRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	hhRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hh_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	hhRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)
