package download

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redirect outcomes.
const (
	outcomeRedirected   = "redirected"
	outcomeUnauthorized = "unauthorized"
	outcomeError        = "error"
)

var (
	redirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlproxy_redirects_total",
			Help: "Redirect attempts by outcome.",
		},
		[]string{"outcome"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dlproxy_redirect_stage_duration_seconds",
			Help:    "Time spent reaching each redirect pipeline stage.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)
)
