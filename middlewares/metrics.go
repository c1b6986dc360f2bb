package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/dlproxy/internal"
)

// unmatchedRoute labels requests no route pattern matched.
const unmatchedRoute = "unmatched"

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithMetricsRegisterer registers the collectors with reg instead of the default registry.
func WithMetricsRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(cfg *MetricsConfig) {
		if reg != nil {
			cfg.Registerer = reg
		}
	}
}

// WithMetricsNamespace sets the metric name prefix. Defaults to "dlproxy".
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Namespace = ns
	}
}

// Metrics returns net/http middleware recording request counts and latencies.
// Paths are labelled by chi route pattern, so secrets in URLs never become
// label values. Register it once per registry.
func Metrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	cfg := &MetricsConfig{
		Registerer: prometheus.DefaultRegisterer,
		Namespace:  "dlproxy",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	factory := promauto.With(cfg.Registerer)
	requests := factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	duration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw, ok := w.(*internal.ResponseWriter)
			if !ok {
				rw = internal.NewResponseWriter(w)
			}

			next.ServeHTTP(rw, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			requests.WithLabelValues(r.Method, route, strconv.Itoa(rw.Status())).Inc()
			duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
