// Package metrics counts resolution outcomes of a batch run and writes them
// in the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/OBrink/citation-normalisation/internal/reference"
	"github.com/OBrink/citation-normalisation/internal/resolver"
)

const namespace = "citenorm"

// Metrics holds the counters of one run. It implements resolver.Observer
// and batch.Recorder.
type Metrics struct {
	registry *prometheus.Registry
	states   *prometheus.CounterVec
	results  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates the metrics of a run, labelled with its id.
func New(runID string) *Metrics {
	labels := prometheus.Labels{"run_id": runID}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		states: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "state_attempts_total",
			Help:        "Resolution state attempts by state, source and outcome.",
			ConstLabels: labels,
		}, []string{"state", "source", "outcome"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "results_total",
			Help:        "Batch results by status.",
			ConstLabels: labels,
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "resolution_duration_seconds",
			Help:        "Wall time of single resolutions.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
	m.registry.MustRegister(m.states, m.results, m.duration)
	return m
}

// ObserveState counts one state attempt.
func (m *Metrics) ObserveState(state string, source reference.Source, outcome resolver.Outcome) {
	m.states.WithLabelValues(state, string(source), string(outcome)).Inc()
}

// ObserveResult counts one batch result. Skipped queries have no duration.
func (m *Metrics) ObserveResult(status string, elapsed time.Duration) {
	m.results.WithLabelValues(status).Inc()
	if elapsed > 0 {
		m.duration.Observe(elapsed.Seconds())
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
