// Package metrics provides Prometheus instrumentation for the auto-reply
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	MessagesProcessed  *prometheus.CounterVec
	Escalations        *prometheus.CounterVec
	ProviderInvokes    *prometheus.CounterVec
	ProviderFallbacks  *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	DispatchFailures   prometheus.Counter
}

// New registers the pipeline metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoreply_messages_processed_total",
			Help: "Total number of inbound messages processed by the orchestrator",
		}, []string{"platform", "outcome"}),
		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoreply_escalations_total",
			Help: "Total number of conversations escalated to human agents",
		}, []string{"reason"}),
		ProviderInvokes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoreply_provider_invokes_total",
			Help: "Total number of LLM provider invocations",
		}, []string{"provider", "status"}),
		ProviderFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoreply_provider_fallbacks_total",
			Help: "Total number of one-hop provider fallbacks",
		}, []string{"from", "to"}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoreply_generation_duration_seconds",
			Help:    "Time taken to retrieve knowledge and generate a response",
			Buckets: prometheus.DefBuckets,
		}),
		DispatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoreply_dispatch_failures_total",
			Help: "Total number of failed channel dispatches",
		}),
	}
}
