package backend

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-verdict/internal/ports"
)

// rateLimitedBackend implements rate limiting using a token bucket
// algorithm. This prevents overwhelming provider rate limits and ensures
// consistent request pacing when a batch run fans out over many samples.
type rateLimitedBackend struct {
	next    ports.JudgmentBackend
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting using
// a token bucket algorithm. The limit parameter sets requests per second,
// while burst allows temporary spikes above the sustained rate. The limiter
// is shared across all calls through the wrapped backend.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.JudgmentBackend) ports.JudgmentBackend {
		return &rateLimitedBackend{
			next:    next,
			limiter: limiter,
		}
	}
}

// SubmitJudgment waits for rate limit permission before forwarding the
// request. This blocks the calling goroutine until a token is available.
func (r *rateLimitedBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return ports.JudgmentResult{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.SubmitJudgment(ctx, prompt)
}

// Model returns the model name from the wrapped implementation.
func (r *rateLimitedBackend) Model() string { return r.next.Model() }
