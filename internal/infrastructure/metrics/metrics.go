package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by route pattern, method and status code
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dorebell_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dorebell_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// RateLimitedTotal counts denied requests per limiter scope.
	// The "store_error" outcome means the counter store failed and the request was let through
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dorebell_rate_limit_decisions_total",
		Help: "Rate limiter decisions by scope and outcome",
	}, []string{"scope", "outcome"})

	// SubmissionsTotal counts form submissions by kind and result (accepted/invalid/spam/limited)
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dorebell_submissions_total",
		Help: "Total number of storefront submissions",
	}, []string{"kind", "result"})

	DispatchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dorebell_dispatch_attempts_total",
		Help: "Outbound HTTP attempts by destination and result",
	}, []string{"destination", "result"})

	// DispatchOutcomesTotal tracks the final status of each sink in a fan-out
	DispatchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dorebell_dispatch_outcomes_total",
		Help: "Fan-out outcomes by sink and status",
	}, []string{"sink", "status"})

	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dorebell_dispatch_duration_seconds",
		Help:    "Time spent delivering one event to one sink",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"sink"})

	// RateLimitEntries is the number of live counters held by the in-memory store
	RateLimitEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dorebell_rate_limit_entries",
		Help: "Current number of in-memory rate limit entries",
	})
)
