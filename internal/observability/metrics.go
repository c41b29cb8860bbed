package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// station resolver and the download orchestrator.
type Metrics struct {
	// Station resolution metrics.
	ResolveRequests  *prometheus.CounterVec // labels: outcome={success,empty,error}
	StationsResolved prometheus.Counter
	StationsDropped  prometheus.Counter // unrecognized coordinate datum

	// Download metrics.
	DownloadSteps    *prometheus.CounterVec // labels: kind={streamflow,catchment}, outcome={success,empty,error}
	ArtifactsWritten *prometheus.CounterVec // labels: kind={streamflow,catchment}
	JobsActive       prometheus.Gauge

	// Upstream request metrics.
	UpstreamDuration *prometheus.HistogramVec // labels: service={nwis_site,nwis_dv,nldi}
	BasinCache       *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ResolveRequests,
		m.StationsResolved,
		m.StationsDropped,
		m.DownloadSteps,
		m.ArtifactsWritten,
		m.JobsActive,
		m.UpstreamDuration,
		m.BasinCache,
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
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "resolve_requests_total",
			Help:      "Station list resolutions by outcome.",
		}, []string{"outcome"}),
		StationsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "stations_resolved_total",
			Help:      "Total stations emitted with normalized WGS84 coordinates.",
		}),
		StationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "stations_dropped_total",
			Help:      "Stations excluded for carrying an unrecognized coordinate datum.",
		}),
		DownloadSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "download_steps_total",
			Help:      "Completed download steps by artifact kind and outcome.",
		}, []string{"kind", "outcome"}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "artifacts_written_total",
			Help:      "Artifacts persisted to local storage by kind.",
		}, []string{"kind"}),
		JobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowdata",
			Name:      "jobs_active",
			Help:      "Download jobs currently streaming progress.",
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowdata",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"service"}),
		BasinCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowdata",
			Name:      "basin_cache_total",
			Help:      "Basin cache lookups by result.",
		}, []string{"result"}),
	}
}
