// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IntentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Name:      "intents_parsed_total",
			Help:      "Utterances parsed, by the tier that produced the result.",
		},
		[]string{"source"},
	)

	AIFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Name:      "ai_fallbacks_total",
			Help:      "AI parse attempts that failed and fell back to the rule parser.",
		},
	)

	Executions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Name:      "executions_total",
			Help:      "Executed intents, by result variant.",
		},
		[]string{"result"},
	)

	BatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Name:      "batch_failures_total",
			Help:      "Batch items whose execution returned an error.",
		},
	)

	SuggestionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Name:      "suggestions_generated_total",
			Help:      "Generated suggestion weeks, by whether every category quota was met.",
		},
		[]string{"fulfilled"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hearth",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// ObserveSuggestions records one generated week.
func ObserveSuggestions(fulfilled bool) {
	SuggestionsGenerated.WithLabelValues(strconv.FormatBool(fulfilled)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
