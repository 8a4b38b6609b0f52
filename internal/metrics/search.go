// Package metrics holds the Prometheus instrumentation for the search core,
// the embedding provider, and the HTTP transport.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline and autocomplete Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codemap",
			Name:      "search_requests_total",
			Help:      "Total number of pipeline search requests",
		},
		[]string{"system", "status"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "codemap",
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of each retrieval pipeline stage",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"system", "stage"},
	)

	AutocompleteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codemap",
			Name:      "autocomplete_requests_total",
			Help:      "Total autocomplete requests by the stage that answered them",
		},
		[]string{"system", "source"},
	)

	SelectionsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codemap",
			Name:      "selections_recorded_total",
			Help:      "Total practitioner selections recorded",
		},
		[]string{"system"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search core metrics. Must be called
// once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(AutocompleteRequestsTotal)
	prometheus.MustRegister(SelectionsRecordedTotal)
	searchMetricsRegistered = true
}
