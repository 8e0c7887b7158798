package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codescope_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dialect"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_graph_nodes_total",
		Help: "Total number of package nodes in the dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_graph_edges_total",
		Help: "Total number of edges in the dependency graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codescope_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_files_analyzed_total",
		Help: "Total number of source files analyzed for imports.",
	})

	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_parse_errors_total",
		Help: "Total number of files skipped due to parse failures.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HistoryWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_history_writes_total",
		Help: "Total number of analysis runs recorded in the history database.",
	})
)
