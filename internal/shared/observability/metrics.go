package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "impactscan_extract_seconds",
		Help:    "Time spent extracting imports and exports from a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "impactscan_build_seconds",
		Help:    "Time spent building one impact tree.",
		Buckets: prometheus.DefBuckets,
	})

	NodesVisitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "impactscan_nodes_total",
		Help: "Total number of tree nodes emitted, by node kind (code, asset, stub).",
	}, []string{"kind"})

	AffectedNodesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impactscan_affected_nodes_total",
		Help: "Total number of nodes marked as affected by a change.",
	})

	TraversalWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "impactscan_traversal_warnings_total",
		Help: "Total number of soft failures recorded during traversal, by stage.",
	}, []string{"stage"})

	PrefetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "impactscan_prefetch_in_flight",
		Help: "Number of file loads currently holding a concurrency slot.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "impactscan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
