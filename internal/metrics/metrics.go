package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Research tree metrics
	TreesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_trees_started_total",
			Help: "Total number of top-level research trees started",
		},
	)

	TreesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_trees_completed_total",
			Help: "Total number of top-level research trees completed",
		},
		[]string{"status"},
	)

	TreeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arbor_tree_duration_seconds",
			Help:    "Research tree build duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	NodesExplored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_nodes_explored_total",
			Help: "Total number of research nodes explored",
		},
	)

	RelevantResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_relevant_results_total",
			Help: "Total number of search results passing the relevance threshold",
		},
	)

	BudgetInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbor_budget_in_flight",
			Help: "External-capability calls currently holding a concurrency slot",
		},
	)

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_search_requests_total",
			Help: "Total number of web search requests",
		},
		[]string{"provider", "status"},
	)

	SearchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_search_latency_seconds",
			Help:    "Web search request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_search_cache_hits_total",
			Help: "Total number of search cache hits",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_search_cache_misses_total",
			Help: "Total number of search cache misses",
		},
	)

	// LLM metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_llm_requests_total",
			Help: "Total number of LLM service requests",
		},
		[]string{"kind", "status"},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_llm_latency_seconds",
			Help:    "LLM service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	CitationsRepaired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_citations_repaired_total",
			Help: "Total number of out-of-range citation markers remapped",
		},
	)
)

// RecordSearchMetrics records one search request outcome.
func RecordSearchMetrics(provider, status string, durationSeconds float64) {
	SearchRequests.WithLabelValues(provider, status).Inc()
	if durationSeconds > 0 {
		SearchLatency.WithLabelValues(provider).Observe(durationSeconds)
	}
}

// RecordLLMMetrics records one LLM request outcome. Kind is the capability
// being exercised: relevance, insights, questions, or report.
func RecordLLMMetrics(kind, status string, durationSeconds float64) {
	LLMRequests.WithLabelValues(kind, status).Inc()
	if durationSeconds > 0 {
		LLMLatency.WithLabelValues(kind).Observe(durationSeconds)
	}
}

// RecordTreeMetrics records a completed tree build.
func RecordTreeMetrics(status string, durationSeconds float64, nodes, relevant int) {
	TreesCompleted.WithLabelValues(status).Inc()
	if durationSeconds > 0 {
		TreeDuration.Observe(durationSeconds)
	}
	if nodes > 0 {
		NodesExplored.Add(float64(nodes))
	}
	if relevant > 0 {
		RelevantResults.Add(float64(relevant))
	}
}
