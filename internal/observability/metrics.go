package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummaryRequests counts summary generations by outcome kind
	// (success, config, validation, api).
	SummaryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_builder_summary_requests_total",
			Help: "Total number of summary generation requests",
		},
		[]string{"outcome"},
	)

	// SummaryDuration tracks end-to-end summary generation latency
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_builder_summary_duration_seconds",
			Help:    "Summary generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UpstreamAttempts counts provider HTTP attempts by result
	// (ok, transient, client_error, transport_error).
	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_builder_upstream_attempts_total",
			Help: "Total number of provider HTTP attempts",
		},
		[]string{"result"},
	)

	// UpstreamRetries counts backoff retries by the status that triggered them
	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_builder_upstream_retries_total",
			Help: "Total number of provider retries after a transient status",
		},
		[]string{"status"},
	)
)
