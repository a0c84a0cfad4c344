package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salescast"

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	forecastRequests   *prometheus.CounterVec
	forecastDuration   *prometheus.HistogramVec
	enrichmentDegraded *prometheus.CounterVec
	modelReloads       *prometheus.CounterVec
	trainingRuns       *prometheus.CounterVec
	gatherer           prometheus.Gatherer
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered on the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return defaultMetrics
}

// New registers the collectors on registerer. Tests pass a fresh prometheus.NewRegistry().
func New(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		forecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast requests by kind (range, intraday, historical) and model mode.",
		}, []string{"kind", "mode"}),
		forecastDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Forecast latency by kind.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		enrichmentDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_degraded_total",
			Help:      "Enrichment lookups that fell back to default features.",
		}, []string{"resolver"}),
		modelReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_reloads_total",
			Help:      "Model handle loads and swaps per mode.",
		}, []string{"mode"}),
		trainingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Training runs per mode and outcome.",
		}, []string{"mode", "status"}),
		gatherer: gatherer,
	}

	registerer.MustRegister(
		m.forecastRequests,
		m.forecastDuration,
		m.enrichmentDegraded,
		m.modelReloads,
		m.trainingRuns,
	)
	return m
}

// ForecastServed counts one forecast and records its latency.
func (m *Metrics) ForecastServed(kind, mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.forecastRequests.WithLabelValues(kind, mode).Inc()
	m.forecastDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// EnrichmentDegraded counts a resolver falling back to defaults.
func (m *Metrics) EnrichmentDegraded(resolver string) {
	if m == nil {
		return
	}
	m.enrichmentDegraded.WithLabelValues(resolver).Inc()
}

// ModelReloaded counts a model handle being (re)loaded.
func (m *Metrics) ModelReloaded(mode string) {
	if m == nil {
		return
	}
	m.modelReloads.WithLabelValues(mode).Inc()
}

// TrainingFinished counts a training run outcome ("success", "failed", "busy").
func (m *Metrics) TrainingFinished(mode, status string) {
	if m == nil {
		return
	}
	m.trainingRuns.WithLabelValues(mode, status).Inc()
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
