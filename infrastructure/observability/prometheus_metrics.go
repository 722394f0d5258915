// Package observability provides monitoring implementations for the
// judgment pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of judgment latency,
// request outcomes, and retry behavior for batch evaluation runs.
type PrometheusMetrics struct {
	latency   *prometheus.HistogramVec
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all required metrics in the given registry. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "judgment_operation_duration_seconds",
				Help:    "Execution time of judgment operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model", "status"},
		),
		counters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judgment_events_total",
				Help: "Count of judgment pipeline events by metric name and outcome.",
			},
			[]string{"metric", "model", "status"},
		),
		histogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "judgment_observed_values",
				Help:    "Distributions observed by the judgment pipeline, such as attempt counts.",
				Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
			},
			[]string{"metric", "model", "status"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.latency.WithLabelValues(
		operation,
		labelOr(labels, "model"),
		labelOr(labels, "status"),
	).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// a labeled Prometheus counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.counters.WithLabelValues(
		metric,
		labelOr(labels, "model"),
		labelOr(labels, "status"),
	).Add(value)
}

// RecordHistogram implements the MetricsCollector interface by observing a
// value in a labeled Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	pm.histogram.WithLabelValues(
		metric,
		labelOr(labels, "model"),
		labelOr(labels, "status"),
	).Observe(value)
}

// labelOr extracts a label value, defaulting to "unknown" so cardinality
// stays bounded even when callers omit context.
func labelOr(labels map[string]string, key string) string {
	if labels == nil {
		return "unknown"
	}
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}
