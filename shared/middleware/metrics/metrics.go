// Package metrics holds the site's Prometheus collectors and the HTTP
// middleware that feeds them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests being served",
		},
	)

	securityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_rejections_total",
			Help: "Requests rejected by the origin, csrf, rate limit or admin checks",
		},
		[]string{"check"},
	)

	storeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_writes_total",
			Help: "Record store write operations",
		},
		[]string{"collection", "op"},
	)

	upstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_failures_total",
			Help: "Failed calls to third-party services",
		},
		[]string{"upstream"},
	)
)

// SecurityRejection counts a request stopped by a security check.
func SecurityRejection(check string) {
	securityRejections.WithLabelValues(check).Inc()
}

// StoreWrite counts a record store mutation.
func StoreWrite(collection, op string) {
	storeWrites.WithLabelValues(collection, op).Inc()
}

// UpstreamFailure counts a failed third-party call (smtp, bible api).
func UpstreamFailure(upstream string) {
	upstreamFailures.WithLabelValues(upstream).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// unmatchedRoute labels requests no route claimed, so probes for random
// paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// Middleware records request metrics per method and chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
