package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and index Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of movie searches",
		},
		[]string{"mode", "status"}, // mode: lexical/hybrid/completion
	)

	SuggestionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_outcomes_total",
			Help:      "Did-you-mean extraction outcomes",
		},
		[]string{"outcome"},
	)

	IndexRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "status"},
	)

	CatalogDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_documents_total",
			Help:      "Catalog documents processed by the loader",
		},
		[]string{"result"}, // indexed/failed/skipped
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SuggestionOutcomesTotal)
	prometheus.MustRegister(IndexRequestDuration)
	prometheus.MustRegister(CatalogDocumentsTotal)
	searchMetricsRegistered = true
}
