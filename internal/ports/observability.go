package ports

import "time"

// MetricsCollector defines the interface for collecting operational metrics
// around backend calls and batch runs. Implementations should integrate with
// observability platforms like Prometheus; a nil collector disables
// collection entirely.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// Useful for tracking events like retries, exhaustions, and errors.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, for distributions
	// like attempt counts or reasoning lengths.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
