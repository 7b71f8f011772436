// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crashmap_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crashmap_db_query_duration_seconds",
		Help:    "Latency of SQL statements issued through the pool.",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	SlowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crashmap_db_slow_queries_total",
		Help: "Total number of SQL statements slower than the configured threshold.",
	})

	CollisionWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_collision_writes_total",
		Help: "Total number of successful collision count writes by kind (set, increment).",
	}, []string{"kind"})

	IntersectionsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crashmap_intersections_added_total",
		Help: "Total number of intersections newly inserted.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_events_published_total",
		Help: "Collision update events by outcome (ok, failed).",
	}, []string{"outcome"})

	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_rate_limit_hits_total",
		Help: "Requests rejected by the rate limiter, by route.",
	}, []string{"route"})
)

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
