// Package metrics exposes the Prometheus collectors shared by the HTTP
// layer and the leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the service's Prometheus collectors. Construct with New
// and register against a single registry; the zero value is unusable.
type Metrics struct {
	ResultsRegistered *prometheus.CounterVec
	Recomputes        prometheus.Counter
	RecomputeDuration prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResultsRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "results_registered_total",
			Help:      "Result rows written, labelled by workout result kind.",
		}, []string{"kind"}),
		Recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "recomputes_total",
			Help:      "Ranking recomputations performed.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaderboard",
			Name:      "recompute_duration_seconds",
			Help:      "Time spent recomputing a category/workout ranking.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "cache_hits_total",
			Help:      "Leaderboard read cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "cache_misses_total",
			Help:      "Leaderboard read cache misses.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, labelled by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.ResultsRegistered,
		m.Recomputes,
		m.RecomputeDuration,
		m.CacheHits,
		m.CacheMisses,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewUnregistered builds collectors without registering them. Useful in
// tests that don't scrape.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
