package backend

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// metricsBackend implements request metrics collection.
// This provides observability into request patterns, latency, and error
// rates for operational monitoring of judgment backends.
type metricsBackend struct {
	next      ports.JudgmentBackend
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that collects request metrics.
// A nil collector disables collection while keeping the chain intact.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.JudgmentBackend) ports.JudgmentBackend {
		return &metricsBackend{
			next:      next,
			collector: collector,
		}
	}
}

// SubmitJudgment executes the request while collecting latency and status
// metrics labeled by model and classified error kind.
func (m *metricsBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	start := time.Now()
	result, err := m.next.SubmitJudgment(ctx, prompt)

	if m.collector != nil {
		labels := map[string]string{
			"model":  m.next.Model(),
			"status": statusLabel(err, result),
		}
		m.collector.RecordLatency("submit_judgment", time.Since(start), labels)
		m.collector.RecordCounter("judgment_requests_total", 1, labels)
	}

	return result, err
}

// statusLabel derives the metric status label from the call outcome.
func statusLabel(err error, result ports.JudgmentResult) string {
	if err == nil {
		if !result.Structured {
			return "unstructured"
		}
		return "success"
	}

	var be *BackendError
	if errors.As(err, &be) {
		switch {
		case be.Kind == KindRateLimit:
			return "rate_limited"
		case be.Kind == KindTimeout:
			return "timeout"
		case be.Retryable():
			return "transient_error"
		default:
			return "permanent_error"
		}
	}
	return "error"
}

// Model returns the model name from the wrapped implementation.
func (m *metricsBackend) Model() string { return m.next.Model() }
