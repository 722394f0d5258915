package backend

import (
	"context"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// timeoutBackend enforces a per-request deadline on the wrapped backend.
// Cancellation at the provider layer has non-deterministic effect on the
// provider side; the request may have partially completed.
type timeoutBackend struct {
	next    ports.JudgmentBackend
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that bounds the wall-clock time of
// each backend call. A non-positive timeout disables the middleware.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ports.JudgmentBackend) ports.JudgmentBackend {
		if timeout <= 0 {
			return next
		}
		return &timeoutBackend{
			next:    next,
			timeout: timeout,
		}
	}
}

// SubmitJudgment forwards the request under a derived deadline.
func (t *timeoutBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SubmitJudgment(ctx, prompt)
}

// Model returns the model name from the wrapped implementation.
func (t *timeoutBackend) Model() string { return t.next.Model() }
