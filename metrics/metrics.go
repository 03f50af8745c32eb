// Package metrics exposes Prometheus counters for corpus preparation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage labels.
const (
	StageDetect   = "detect"
	StageGenerate = "generate"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	registry        *prometheus.Registry
	rowsProcessed   *prometheus.CounterVec
	termsDetected   *prometheus.CounterVec
	substitutions   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	requestFailures *prometheus.CounterVec
}

// New registers every collector on a private registry so tests and
// multiple servers in one process never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_prep_rows_processed_total",
				Help: "Rows read from survey tables",
			},
			[]string{"stage"},
		),
		termsDetected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_prep_terms_detected_total",
				Help: "Distinct acronyms and compound entities found by detection",
			},
			[]string{"kind"},
		),
		substitutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_prep_substitutions_total",
				Help: "Dictionary replacements applied during generation",
			},
			[]string{"kind"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corpus_prep_stage_duration_seconds",
				Help:    "Time spent per detection or generation run",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		requestFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_prep_failures_total",
				Help: "Failed detection or generation runs",
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(
		m.rowsProcessed,
		m.termsDetected,
		m.substitutions,
		m.stageDuration,
		m.requestFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDetect records a finished detection run.
func (m *Metrics) ObserveDetect(rows, acronyms, entities int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rowsProcessed.WithLabelValues(StageDetect).Add(float64(rows))
	m.termsDetected.WithLabelValues("acronym").Add(float64(acronyms))
	m.termsDetected.WithLabelValues("entity").Add(float64(entities))
	m.stageDuration.WithLabelValues(StageDetect).Observe(elapsed.Seconds())
}

// ObserveGenerate records a finished generation run.
func (m *Metrics) ObserveGenerate(rows, acronymSubs, entitySubs int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rowsProcessed.WithLabelValues(StageGenerate).Add(float64(rows))
	m.substitutions.WithLabelValues("acronym").Add(float64(acronymSubs))
	m.substitutions.WithLabelValues("entity").Add(float64(entitySubs))
	m.stageDuration.WithLabelValues(StageGenerate).Observe(elapsed.Seconds())
}

// Failure counts a run that ended in error.
func (m *Metrics) Failure(stage string) {
	if m == nil {
		return
	}
	m.requestFailures.WithLabelValues(stage).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
