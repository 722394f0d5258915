// Package judge implements the resilient judgment client: it wraps one
// remote judgment call in a retry/backoff state machine and a strict-output
// contract, so every evaluation resolves to a guaranteed binary verdict no
// matter how the underlying backend misbehaves.
package judge

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Default retry and output-contract configuration.
const (
	// DefaultMaxRetries is the default total attempt budget.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the initial backoff delay for transient errors.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps the backoff delay on either schedule.
	DefaultMaxDelay = 30 * time.Second
	// DefaultRateLimitBaseDelay is the initial delay on the slower
	// schedule used when the backend signals overload. Rate-limit
	// conditions resolve more slowly than ordinary transient failures.
	DefaultRateLimitBaseDelay = 3 * time.Second
	// DefaultJitterMax bounds the random jitter added on the normal
	// schedule; jitter is drawn from [0, DefaultJitterMax).
	DefaultJitterMax = 1 * time.Second
	// DefaultRateLimitJitterMin and DefaultRateLimitJitterMax bound the
	// wider jitter range used on the rate-limit schedule.
	DefaultRateLimitJitterMin = 1 * time.Second
	DefaultRateLimitJitterMax = 3 * time.Second
	// DefaultReasoningMaxLen caps stored reasoning text to bound log and
	// storage size.
	DefaultReasoningMaxLen = 200

	// fallbackScanLen limits the constrained textual match on
	// unstructured backend output to the leading characters of the reply.
	fallbackScanLen = 20
	// fallbackExcerptLen bounds how much raw text is quoted in the
	// reasoning of a fallback judgment.
	fallbackExcerptLen = 100
)

// Config defines the retry policy and output contract for a Client.
// Configuration is validated at construction and immutable thereafter.
type Config struct {
	// MaxRetries is the total attempt budget, including the first call.
	MaxRetries int `validate:"required,min=1,max=10"`

	// BaseDelay is the initial backoff delay; subsequent transient
	// failures back off exponentially (base times 2^(n-1)).
	BaseDelay time.Duration `validate:"required,min=1ms"`

	// MaxDelay caps the computed delay on both schedules.
	MaxDelay time.Duration `validate:"required,min=1ms"`

	// RateLimitBaseDelay is the initial delay when the backend signals
	// overload; it grows faster (base times 3^(n-1)).
	RateLimitBaseDelay time.Duration `validate:"required,min=1ms"`

	// JitterMax bounds the random jitter [0, JitterMax) added on the
	// normal schedule.
	JitterMax time.Duration `validate:"min=0"`

	// RateLimitJitterMin and RateLimitJitterMax bound the jitter range
	// on the rate-limit schedule.
	RateLimitJitterMin time.Duration `validate:"min=0"`
	RateLimitJitterMax time.Duration `validate:"min=0,gtefield=RateLimitJitterMin"`

	// ReasoningMaxLen is the maximum stored reasoning length in
	// characters; longer backend reasoning is truncated.
	ReasoningMaxLen int `validate:"required,min=1,max=10000"`

	// PromptTemplate is the Go template used to build judgment prompts.
	// It must reference {{.Question}} and {{.Response}}.
	PromptTemplate string `validate:"required,min=20"`
}

// DefaultConfig returns a Config with the default retry schedule and
// output contract.
func DefaultConfig() Config {
	return Config{
		MaxRetries:         DefaultMaxRetries,
		BaseDelay:          DefaultBaseDelay,
		MaxDelay:           DefaultMaxDelay,
		RateLimitBaseDelay: DefaultRateLimitBaseDelay,
		JitterMax:          DefaultJitterMax,
		RateLimitJitterMin: DefaultRateLimitJitterMin,
		RateLimitJitterMax: DefaultRateLimitJitterMax,
		ReasoningMaxLen:    DefaultReasoningMaxLen,
		PromptTemplate:     DefaultPromptTemplate,
	}
}

// Client obtains exactly one Judgment per Evaluate call, guaranteeing the
// verdict is always pass or fail even when the backend misbehaves, while
// bounding total latency and request volume under transient failure.
// The client holds no shared mutable state and is safe for concurrent use.
type Client struct {
	backend ports.JudgmentBackend
	config  Config
	tmpl    *template.Template
}

// NewClient creates a judge client over the given backend. Zero-valued
// config fields are filled from DefaultConfig before validation, so callers
// only specify what they want to override.
func NewClient(be ports.JudgmentBackend, config Config) (*Client, error) {
	if be == nil {
		return nil, fmt.Errorf("judgment backend must not be nil")
	}

	applyDefaults(&config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid judge configuration: %w", err)
	}

	tmpl, err := template.New("judgment_prompt").Parse(config.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}

	return &Client{
		backend: be,
		config:  config,
		tmpl:    tmpl,
	}, nil
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.BaseDelay == 0 {
		config.BaseDelay = defaults.BaseDelay
	}
	if config.MaxDelay == 0 {
		config.MaxDelay = defaults.MaxDelay
	}
	if config.RateLimitBaseDelay == 0 {
		config.RateLimitBaseDelay = defaults.RateLimitBaseDelay
	}
	if config.JitterMax == 0 {
		config.JitterMax = defaults.JitterMax
	}
	if config.RateLimitJitterMin == 0 {
		config.RateLimitJitterMin = defaults.RateLimitJitterMin
	}
	if config.RateLimitJitterMax == 0 {
		config.RateLimitJitterMax = defaults.RateLimitJitterMax
	}
	if config.ReasoningMaxLen == 0 {
		config.ReasoningMaxLen = defaults.ReasoningMaxLen
	}
	if config.PromptTemplate == "" {
		config.PromptTemplate = defaults.PromptTemplate
	}
}

// Model returns the model identifier of the underlying backend.
func (c *Client) Model() string { return c.backend.Model() }

// attemptState enumerates the retry state machine. The loop holds
// stateAttempting until an attempt either succeeds or the budget is spent;
// error classification is data, not exception control flow.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateSucceeded
	stateExhausted
)

// Evaluate judges whether response correctly answers question.
// It never returns an error: every failure path, including retry exhaustion
// and permanent backend errors, resolves to a fail-safe Judgment whose
// reasoning names the error and attempt count. The context bounds both the
// backend round-trips and the backoff sleeps.
func (c *Client) Evaluate(ctx context.Context, question, response string) domain.Judgment {
	prompt, err := c.buildPrompt(question, response)
	if err != nil {
		return c.failSafe(1, err)
	}

	var (
		state    = stateAttempting
		attempts = 0
		result   ports.JudgmentResult
		lastErr  error
	)

	for state == stateAttempting {
		attempts++
		res, err := c.backend.SubmitJudgment(ctx, prompt)

		switch {
		case err == nil:
			result = res
			state = stateSucceeded

		case ports.IsRetryable(err) && attempts < c.config.MaxRetries:
			lastErr = err
			if sleepErr := c.sleepBackoff(ctx, attempts, ports.IsRateLimited(err)); sleepErr != nil {
				// Context ended during backoff; no budget left to spend.
				lastErr = sleepErr
				state = stateExhausted
			}

		default:
			// Permanent errors short-circuit; transient errors land
			// here only once the attempt budget is spent.
			lastErr = err
			state = stateExhausted
		}
	}

	if state == stateExhausted {
		return c.failSafe(attempts, lastErr)
	}

	return c.judgmentFrom(result, attempts)
}

// buildPrompt renders the judgment prompt with question and response
// embedded verbatim.
func (c *Client) buildPrompt(question, response string) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, promptData{Question: question, Response: response}); err != nil {
		return "", fmt.Errorf("prompt template execution failed: %w", err)
	}
	return buf.String(), nil
}

// judgmentFrom converts a backend result into a Judgment, enforcing the
// binary-output invariant. Structured results with a missing or
// out-of-enumeration verdict default to fail; unstructured results go
// through the constrained textual fallback.
func (c *Client) judgmentFrom(result ports.JudgmentResult, attempts int) domain.Judgment {
	if !result.Structured {
		return c.fallbackJudgment(result.Raw, attempts)
	}

	verdict, err := domain.ParseVerdict(result.Verdict)
	if err != nil {
		// Bias toward caution when the schema was not honored.
		verdict = domain.VerdictFail
	}

	return domain.Judgment{
		Verdict:   verdict,
		Reasoning: truncate(result.Reasoning, c.config.ReasoningMaxLen),
		Attempts:  attempts,
	}
}

// fallbackJudgment performs the constrained textual match for backend modes
// that cannot guarantee structured output: only the literal token "pass"
// within the first few characters counts as a pass, anything else is a fail.
// This path must never be primary when structured output is available.
func (c *Client) fallbackJudgment(raw string, attempts int) domain.Judgment {
	verdict := domain.VerdictFail
	if strings.Contains(cases.Fold().String(truncate(raw, fallbackScanLen)), "pass") {
		verdict = domain.VerdictPass
	}

	reasoning := "fallback text parse: " + truncate(strings.TrimSpace(raw), fallbackExcerptLen)

	return domain.Judgment{
		Verdict:   verdict,
		Reasoning: truncate(reasoning, c.config.ReasoningMaxLen),
		Attempts:  attempts,
	}
}

// failSafe builds the guaranteed-valid Judgment returned when all retries
// are exhausted or a permanent error occurs.
func (c *Client) failSafe(attempts int, cause error) domain.Judgment {
	if attempts < 1 {
		attempts = 1
	}

	reasoning := fmt.Sprintf("error after %d attempts", attempts)
	if cause != nil {
		reasoning = fmt.Sprintf("%s: %v", reasoning, cause)
	}

	return domain.Judgment{
		Verdict:   domain.VerdictFail,
		Reasoning: truncate(reasoning, c.config.ReasoningMaxLen),
		Attempts:  attempts,
	}
}

// sleepBackoff blocks for the backoff interval before the next attempt.
// The normal schedule doubles per attempt with jitter in [0, JitterMax);
// the rate-limit schedule triples per attempt with jitter in
// [RateLimitJitterMin, RateLimitJitterMax), reflecting that overload
// conditions warrant multiplicatively longer waits. Returns the context
// error if the context ends first.
func (c *Client) sleepBackoff(ctx context.Context, attempt int, rateLimited bool) error {
	delay := c.backoffDelay(attempt, rateLimited)

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// backoffDelay computes the delay before attempt n+1 given that attempt n
// failed.
func (c *Client) backoffDelay(attempt int, rateLimited bool) time.Duration {
	base := c.config.BaseDelay
	factor := time.Duration(1) << (attempt - 1) // 2^(n-1)
	jitterLo, jitterHi := time.Duration(0), c.config.JitterMax

	if rateLimited {
		base = c.config.RateLimitBaseDelay
		factor = pow3(attempt - 1)
		jitterLo, jitterHi = c.config.RateLimitJitterMin, c.config.RateLimitJitterMax
	}

	delay := base * factor
	if delay > c.config.MaxDelay || delay <= 0 {
		delay = c.config.MaxDelay
	}

	if span := jitterHi - jitterLo; span > 0 {
		//nolint:gosec // G404: math/rand is acceptable for retry jitter timing.
		delay += jitterLo + rand.N(span)
	} else {
		delay += jitterLo
	}

	return delay
}

// pow3 returns 3^n as a duration multiplier.
func pow3(n int) time.Duration {
	result := time.Duration(1)
	for i := 0; i < n; i++ {
		result *= 3
	}
	return result
}

// truncate bounds s to at most max characters, counting runes so multi-byte
// text is never split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
