package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the feature service.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,not_modified,error}
	CacheLookups     *prometheus.CounterVec // labels: result={hit,miss}
	FetchDuration    prometheus.Histogram
	FeaturesLoaded   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.CacheLookups,
		m.FetchDuration,
		m.FeaturesLoaded,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leakmap",
			Name:      "upstream_requests_total",
			Help:      "Feature source requests by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leakmap",
			Name:      "cache_lookups_total",
			Help:      "Redis cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leakmap",
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of upstream feature fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeaturesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leakmap",
			Name:      "features_loaded",
			Help:      "Number of features in the last successful load.",
		}),
	}
}
