// Package metrics provides the centralized Prometheus registry for the edge
// engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	MatchesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "matches_processed_total",
		Help:      "Total number of fixtures run through the pipeline",
	})
	PicksSelectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "picks_selected_total",
		Help:      "Total number of fixtures that produced a displayable pick",
	})
	PredictionsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "predictions_published_total",
		Help:      "Total number of predictions published to the store",
	})
	RiskRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "risk_rejections_total",
		Help:      "Risk gate rejections by gate",
	}, []string{"gate"})
	ChecksumFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "checksum_failures_total",
		Help:      "Stored predictions failing checksum verification on read",
	})
	AccasBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_engine",
		Name:      "accas_built_total",
		Help:      "Total number of accumulators assembled",
	})
)

// Gauge metrics
var (
	SlateExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "slate_exposure_fraction",
		Help:      "Worst-case stake fraction committed across the current slate",
	})
	SlatePicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_engine",
		Name:      "slate_picks",
		Help:      "Picks kept after the portfolio correlation filter",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_engine",
		Name:      "simulation_duration_seconds",
		Help:      "Per-fixture Monte Carlo duration",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	})
)

// Registry returns the singleton registry with all metrics registered.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			MatchesProcessedTotal,
			PicksSelectedTotal,
			PredictionsPublishedTotal,
			RiskRejectionsTotal,
			ChecksumFailuresTotal,
			AccasBuiltTotal,
			SlateExposure,
			SlatePicks,
			SimulationDuration,
		)
	})
	return registry
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
