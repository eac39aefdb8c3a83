package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pair outcomes.
const (
	PairOK      = "ok"
	PairError   = "error"
	PairCached  = "cached"
	PairSkipped = "skipped"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightscan_searches_total",
			Help: "Completed searches by result source",
		},
		[]string{"source"},
	)

	PairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightscan_pairs_total",
			Help: "Date pairs processed by outcome",
		},
		[]string{"outcome"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightscan_provider_errors_total",
			Help: "Provider call failures by kind",
		},
		[]string{"kind"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flightscan_search_duration_seconds",
			Help:    "Wall-clock duration of a search",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		},
	)

	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightscan_ratelimit_wait_seconds",
			Help:    "Time spent waiting for a provider rate limit token",
			Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"provider"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightscan_jobs_active",
			Help: "Async search jobs currently running",
		},
	)
)
