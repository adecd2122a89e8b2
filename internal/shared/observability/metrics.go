package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics definitions
var (
	DiscoveredPackages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monodeps_discovered_packages",
		Help: "Number of packages found by the last discovery run.",
	})

	SkippedManifestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monodeps_skipped_manifests_total",
		Help: "Total number of manifests skipped because they could not be read or parsed.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monodeps_graph_nodes_total",
		Help: "Total number of nodes in the package dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monodeps_graph_edges_total",
		Help: "Total number of edges in the package dependency graph.",
	})

	Anomalies = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "monodeps_anomalies",
		Help: "Anomalies reported by the last analysis, by type and severity.",
	}, []string{"type", "severity"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monodeps_analysis_seconds",
		Help:    "Time spent on each analysis phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monodeps_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
