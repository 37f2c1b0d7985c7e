package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archive_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AggregateFailuresTotal counts building sub-aggregates that were served empty because their query failed.
	AggregateFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_aggregate_failures_total",
			Help: "Soft-failed building aggregate queries",
		},
		[]string{"aggregate"},
	)

	ImageIngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_image_ingests_total",
			Help: "SVG ingestions by category and result",
		},
		[]string{"category", "result"},
	)

	OrphanCleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_orphan_cleanup_failures_total",
			Help: "Stored assets that could not be removed after their row write failed",
		},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
