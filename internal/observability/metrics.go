package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the service.
type Metrics struct {
	FetchCacheLookups *prometheus.CounterVec // labels: pool, result={hit,miss}
	UpstreamRequests  *prometheus.CounterVec // labels: pool, outcome={success,error}

	SoloizeCacheLookups  *prometheus.CounterVec // labels: result={hit,miss}
	SoloizeRefreshCycles prometheus.Counter
	SoloizeRefreshErrors prometheus.Counter
	SoloizeLastRefresh   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchCacheLookups,
		m.UpstreamRequests,
		m.SoloizeCacheLookups,
		m.SoloizeRefreshCycles,
		m.SoloizeRefreshErrors,
		m.SoloizeLastRefresh,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct fresh instances without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathercal",
			Name:      "fetch_cache_lookups_total",
			Help:      "Reactive URL cache lookups by pool and result.",
		}, []string{"pool", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathercal",
			Name:      "upstream_requests_total",
			Help:      "Upstream HTTP fetches by pool and outcome.",
		}, []string{"pool", "outcome"}),
		SoloizeCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathercal",
			Name:      "soloize_cache_lookups_total",
			Help:      "Soloize feed cache lookups by result.",
		}, []string{"result"}),
		SoloizeRefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercal",
			Name:      "soloize_refresh_cycles_total",
			Help:      "Completed background refresh cycles.",
		}),
		SoloizeRefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercal",
			Name:      "soloize_refresh_errors_total",
			Help:      "Per-URL failures during background refresh.",
		}),
		SoloizeLastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathercal",
			Name:      "soloize_last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh cycle.",
		}),
	}
}
