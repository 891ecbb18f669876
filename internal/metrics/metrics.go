// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RetrievalSearchesTotal counts index searches by outcome ("hit" / "empty").
	RetrievalSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "retrieval_searches_total",
			Help:      "Total number of index searches",
		},
		[]string{"outcome"},
	)

	// RetrievalSearchDuration observes encode+search latency.
	RetrievalSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Name:      "retrieval_search_duration_seconds",
			Help:      "Query vectorization and index search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	// ScopeDecisionsTotal counts scope-gate decisions ("in_scope" / "out_of_scope").
	ScopeDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "scope_decisions_total",
			Help:      "Total scope gate decisions",
		},
		[]string{"decision"},
	)

	// LLMRequestsTotal counts generation requests by status ("success" / "error").
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM generation requests",
		},
		[]string{"model", "status"},
	)

	// LLMRequestDuration observes generation latency.
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	// LLMTokensTotal counts tokens reported by the provider ("prompt" / "completion").
	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "type"},
	)

	// SnapshotChunks reports the size of the currently published snapshot.
	SnapshotChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medrag",
			Name:      "snapshot_chunks",
			Help:      "Number of chunks in the published corpus snapshot",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalSearchesTotal)
	prometheus.MustRegister(RetrievalSearchDuration)
	prometheus.MustRegister(ScopeDecisionsTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(SnapshotChunks)
	pipelineMetricsRegistered = true
}
