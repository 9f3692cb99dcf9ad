// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors of the HTTP layer. Route labels
// always use the registered Gin pattern (e.g. /api/v1/dogs/:name); requests
// that matched no route share the "unmatched" label so dog and person names
// never leak into label values.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedPath labels requests that hit NoRoute/NoMethod.
const unmatchedPath = "unmatched"

// Unit-of-work outcomes as seen by the HTTP layer.
const (
	uowCommitted    = "committed"
	uowHandlerError = "handler_error"
	uowScopeError   = "scope_error"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is left out to keep histogram cardinality low.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Kennel payloads are small JSON documents.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: []float64{64, 128, 256, 512, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10},
		},
		[]string{"method", "path"},
	)

	httpRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of HTTP requests rejected with 429.",
		},
	)

	httpUowOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_unit_of_work_total",
			Help: "Request units of work by route and outcome (committed, handler_error, scope_error).",
		},
		[]string{"path", "outcome"},
	)

	httpConstraintViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_constraint_violations_total",
			Help: "Storage constraint violations answered with 400, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, httpRateLimited,
		httpUowOutcomes, httpConstraintViolations)
}

// ObserveConstraintViolation counts a constraint violation translated to a
// client error. kind is the classifier's label (unique, foreign key, ...).
func ObserveConstraintViolation(kind string) {
	httpConstraintViolations.WithLabelValues(kind).Inc()
}

// routeLabel returns the registered route of c, or unmatchedPath.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedPath
}

// Metrics returns a Gin middleware recording request count, latency,
// in-flight requests and response size.
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := routeLabel(c)
		method := c.Request.Method
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// -1 means no body was written (304, hijack).
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
