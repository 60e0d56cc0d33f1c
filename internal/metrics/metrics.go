package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every Prometheus metric the scoring core exposes.
type Registry struct {
	ScoringRuns    *prometheus.CounterVec
	GateFailures   *prometheus.CounterVec
	Vetoes         *prometheus.CounterVec
	BatchItemError prometheus.Counter

	SimDuration      prometheus.Histogram
	PipelineDuration prometheus.Histogram

	SimCacheHits   prometheus.Counter
	SimCacheMisses prometheus.Counter

	WeightVersion *prometheus.GaugeVec
}

// NewRegistry creates the metric set and registers it with the given
// registerer (pass prometheus.DefaultRegisterer in production, a private
// registry in tests).
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ScoringRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldscore_runs_total",
				Help: "Completed scoring runs by asset class and outcome",
			},
			[]string{"class", "outcome"}, // outcome: scored|gate_rejected|veto|error
		),
		GateFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldscore_gate_failures_total",
				Help: "Gate rejections by gate name",
			},
			[]string{"gate"},
		),
		Vetoes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldscore_vetoes_total",
				Help: "Veto trips by asset class",
			},
			[]string{"class"},
		),
		BatchItemError: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "yieldscore_batch_item_errors_total",
				Help: "Per-item failures inside batch runs",
			},
		),
		SimDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "yieldscore_simulation_duration_seconds",
				Help:    "Monte Carlo erosion simulation wall time",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "yieldscore_pipeline_duration_seconds",
				Help:    "Full single-ticker pipeline wall time",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		SimCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "yieldscore_sim_cache_hits_total",
				Help: "Erosion results served from the 30-day cache",
			},
		),
		SimCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "yieldscore_sim_cache_misses_total",
				Help: "Erosion results that required a fresh simulation",
			},
		),
		WeightVersion: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yieldscore_weight_version_info",
				Help: "Set to 1 for the weight-set version currently in use",
			},
			[]string{"version"},
		),
	}

	reg.MustRegister(
		r.ScoringRuns, r.GateFailures, r.Vetoes, r.BatchItemError,
		r.SimDuration, r.PipelineDuration,
		r.SimCacheHits, r.SimCacheMisses,
		r.WeightVersion,
	)
	return r
}

// NewNopRegistry creates metrics bound to a throwaway registry, for tests
// and callers that do not scrape.
func NewNopRegistry() *Registry {
	return NewRegistry(prometheus.NewRegistry())
}

// Handler serves the gatherer's metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
