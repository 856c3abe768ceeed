package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Quote fetch outcomes
const (
	FetchOK      = "ok"
	FetchPartial = "partial"
	FetchEmpty   = "empty"
	FetchFailed  = "failed"
	FetchSkipped = "skipped"
)

// Submission outcomes
const (
	SubmitAccepted = "accepted"
	SubmitRejected = "rejected"
	SubmitFailed   = "failed"
)

// Registry holds the tracker's Prometheus metrics on a private registry
type Registry struct {
	registry *prometheus.Registry

	QuoteFetches     *prometheus.CounterVec
	PositionsSubmits *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
}

// New creates and registers all metrics
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		QuoteFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_quote_fetch_total",
				Help: "Quote fetches by outcome",
			},
			[]string{"result"},
		),

		PositionsSubmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_positions_submitted_total",
				Help: "Position submissions by outcome",
			},
			[]string{"result"},
		),

		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracker_pipeline_duration_seconds",
				Help:    "Duration of one load, fetch and enrich run",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
	}

	r.registry.MustRegister(r.QuoteFetches, r.PositionsSubmits, r.PipelineDuration)
	return r
}

// ObserveFetch counts one quote fetch outcome. A nil registry is a no-op.
func (r *Registry) ObserveFetch(result string) {
	if r == nil {
		return
	}
	r.QuoteFetches.WithLabelValues(result).Inc()
}

// ObserveSubmit counts one submission outcome. A nil registry is a no-op.
func (r *Registry) ObserveSubmit(result string) {
	if r == nil {
		return
	}
	r.PositionsSubmits.WithLabelValues(result).Inc()
}

// ObservePipeline records a pipeline run duration in seconds. A nil registry is a no-op.
func (r *Registry) ObservePipeline(seconds float64) {
	if r == nil {
		return
	}
	r.PipelineDuration.Observe(seconds)
}

// Handler exposes the registry over HTTP
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
