package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depscope_parsing_seconds",
		Help:    "Time spent parsing a Python source file.",
		Buckets: prometheus.DefBuckets,
	})

	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depscope_refresh_seconds",
		Help:    "Time spent on a full scan-and-resolve pass.",
		Buckets: prometheus.DefBuckets,
	})

	ModulesDetected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscope_modules_detected",
		Help: "Distinct top-level modules imported by the project as of the last refresh.",
	})

	PackagesMissing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscope_packages_missing",
		Help: "Packages required but not installed as of the last refresh.",
	})

	ClassifierLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscope_classifier_lookups_total",
		Help: "Standard-library classifications performed, by source.",
	}, []string{"source"})

	ManagerQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscope_manager_queries_total",
		Help: "Package manager list invocations, by result.",
	}, []string{"result"})

	InstallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscope_installs_total",
		Help: "Install operations completed, by result.",
	}, []string{"result"})

	InstallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depscope_install_seconds",
		Help:    "Wall time of a pip install operation.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	InstallLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_install_lines_total",
		Help: "Output lines streamed from install subprocesses.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	JournalQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscope_journal_queue_depth",
		Help: "Current number of in-memory journal records waiting to be persisted.",
	})

	JournalEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_journal_enqueued_total",
		Help: "Total number of journal records accepted into the in-memory queue.",
	})

	JournalDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_journal_dropped_total",
		Help: "Total number of journal records dropped from in-memory enqueue due to backpressure.",
	})

	JournalApplyErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_journal_apply_errors_total",
		Help: "Total number of journal batch apply errors.",
	})

	JournalProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscope_journal_processed_total",
		Help: "Total number of journal records successfully applied.",
	})

	JournalFlushLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depscope_journal_flush_seconds",
		Help:    "Latency for applying a journal batch.",
		Buckets: prometheus.DefBuckets,
	})
)
