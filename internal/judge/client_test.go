package judge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/infrastructure/backend"
	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
	"github.com/ahrav/go-verdict/internal/testutils"
)

// fastConfig returns a config with millisecond backoff so retry tests run
// quickly while exercising the real schedule arithmetic.
func fastConfig() Config {
	return Config{
		MaxRetries:         3,
		BaseDelay:          time.Millisecond,
		MaxDelay:           50 * time.Millisecond,
		RateLimitBaseDelay: 2 * time.Millisecond,
		JitterMax:          time.Millisecond,
		RateLimitJitterMin: time.Millisecond,
		RateLimitJitterMax: 3 * time.Millisecond,
		ReasoningMaxLen:    200,
		PromptTemplate:     DefaultPromptTemplate,
	}
}

func transientErr() error {
	return backend.NewBackendError("test", backend.KindTimeout, 0, "request timed out", nil)
}

func rateLimitErr() error {
	return backend.NewBackendError("test", backend.KindRateLimit, 429, "rate limit exceeded", nil)
}

func permanentErr() error {
	return backend.NewBackendError("test", backend.KindAuthentication, 401, "authentication failed", nil)
}

func passResult(reasoning string) testutils.MockOutcome {
	return testutils.MockOutcome{Result: ports.JudgmentResult{
		Verdict:    "pass",
		Reasoning:  reasoning,
		Structured: true,
	}}
}

func TestNewClient(t *testing.T) {
	be := testutils.NewMockBackend("test-model")

	t.Run("nil backend rejected", func(t *testing.T) {
		_, err := NewClient(nil, DefaultConfig())
		require.Error(t, err)
	})

	t.Run("zero config filled with defaults", func(t *testing.T) {
		client, err := NewClient(be, Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxRetries, client.config.MaxRetries)
		assert.Equal(t, DefaultReasoningMaxLen, client.config.ReasoningMaxLen)
		assert.Equal(t, DefaultPromptTemplate, client.config.PromptTemplate)
	})

	t.Run("invalid retry budget rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxRetries = 99
		_, err := NewClient(be, cfg)
		require.Error(t, err)
	})

	t.Run("malformed template rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PromptTemplate = "evaluate this answer: {{.Response"
		_, err := NewClient(be, cfg)
		require.Error(t, err)
	})
}

func TestEvaluate_Success(t *testing.T) {
	be := testutils.NewMockBackend("test-model", passResult("The response correctly answers the question."))
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "What is 2+2?", "The answer is 4.")

	assert.Equal(t, domain.VerdictPass, judgment.Verdict)
	assert.Equal(t, "The response correctly answers the question.", judgment.Reasoning)
	assert.Equal(t, 1, judgment.Attempts)
	assert.Equal(t, 1, be.Calls())
}

func TestEvaluate_PromptEmbedsInputsVerbatim(t *testing.T) {
	be := testutils.NewMockBackend("test-model", passResult("ok"))
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	question := "What is the capital of France?"
	response := "Paris is the capital of France."
	client.Evaluate(context.Background(), question, response)

	prompts := be.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], question)
	assert.Contains(t, prompts[0], response)
}

func TestEvaluate_RetriesTransientThenSucceeds(t *testing.T) {
	// Two transient failures, then success: attempts must be k+1 with the
	// backend's verdict, and no error surfaces.
	be := testutils.NewMockBackend("test-model",
		testutils.MockOutcome{Err: transientErr()},
		testutils.MockOutcome{Err: rateLimitErr()},
		passResult("correct"),
	)
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "q", "r")

	assert.Equal(t, domain.VerdictPass, judgment.Verdict)
	assert.Equal(t, 3, judgment.Attempts)
	assert.Equal(t, 3, be.Calls())
}

func TestEvaluate_ExhaustsRetries(t *testing.T) {
	be := testutils.NewMockBackend("test-model", testutils.MockOutcome{Err: transientErr()})
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "q", "r")

	assert.Equal(t, domain.VerdictFail, judgment.Verdict)
	assert.Equal(t, 3, judgment.Attempts, "exhaustion consumes exactly the retry budget")
	assert.Equal(t, 3, be.Calls())
	assert.Contains(t, judgment.Reasoning, "after 3 attempts")
	assert.Contains(t, judgment.Reasoning, "timed out")
}

func TestEvaluate_PermanentErrorShortCircuits(t *testing.T) {
	be := testutils.NewMockBackend("test-model", testutils.MockOutcome{Err: permanentErr()})
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "q", "r")

	assert.Equal(t, domain.VerdictFail, judgment.Verdict)
	assert.Equal(t, 1, judgment.Attempts, "permanent errors must not consume remaining retries")
	assert.Equal(t, 1, be.Calls())
	assert.Contains(t, judgment.Reasoning, "authentication")
}

func TestEvaluate_ProtocolViolationNotRetried(t *testing.T) {
	protocolErr := backend.NewBackendError("test", backend.KindProtocol, 0, "malformed arguments", nil)
	be := testutils.NewMockBackend("test-model", testutils.MockOutcome{Err: protocolErr})
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "q", "r")

	assert.Equal(t, domain.VerdictFail, judgment.Verdict)
	assert.Equal(t, 1, be.Calls())
}

func TestEvaluate_ContextCancelledDuringBackoff(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = time.Minute
	cfg.MaxDelay = time.Minute
	be := testutils.NewMockBackend("test-model", testutils.MockOutcome{Err: transientErr()})
	client, err := NewClient(be, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	judgment := client.Evaluate(ctx, "q", "r")

	assert.Equal(t, domain.VerdictFail, judgment.Verdict)
	assert.Equal(t, 1, be.Calls(), "cancellation must not trigger further attempts")
	assert.Contains(t, judgment.Reasoning, "context")
}

func TestEvaluate_MissingFieldsDefaultToCaution(t *testing.T) {
	tests := []struct {
		name   string
		result ports.JudgmentResult
		want   domain.Verdict
	}{
		{
			name:   "empty verdict defaults to fail",
			result: ports.JudgmentResult{Structured: true},
			want:   domain.VerdictFail,
		},
		{
			name:   "out-of-enumeration verdict defaults to fail",
			result: ports.JudgmentResult{Verdict: "maybe", Reasoning: "unsure", Structured: true},
			want:   domain.VerdictFail,
		},
		{
			name:   "fail verdict preserved",
			result: ports.JudgmentResult{Verdict: "fail", Reasoning: "incorrect", Structured: true},
			want:   domain.VerdictFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := testutils.NewMockBackend("test-model", testutils.MockOutcome{Result: tt.result})
			client, err := NewClient(be, fastConfig())
			require.NoError(t, err)

			judgment := client.Evaluate(context.Background(), "q", "r")
			assert.Equal(t, tt.want, judgment.Verdict)
			assert.Equal(t, 1, judgment.Attempts)
		})
	}
}

func TestEvaluate_ReasoningTruncatedToCap(t *testing.T) {
	long := strings.Repeat("a", 500)
	be := testutils.NewMockBackend("test-model", passResult(long))
	client, err := NewClient(be, fastConfig())
	require.NoError(t, err)

	judgment := client.Evaluate(context.Background(), "q", "r")

	assert.Len(t, []rune(judgment.Reasoning), 200, "reasoning must be truncated to exactly the cap")
}

func TestEvaluate_FallbackTextParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Verdict
	}{
		{name: "leading pass token", raw: "PASS - the answer is correct", want: domain.VerdictPass},
		{name: "lowercase pass", raw: "pass", want: domain.VerdictPass},
		{name: "fail token", raw: "FAIL: wrong answer", want: domain.VerdictFail},
		{name: "pass beyond scan window ignored", raw: strings.Repeat("x", 30) + " pass", want: domain.VerdictFail},
		{name: "empty text fails", raw: "", want: domain.VerdictFail},
		{name: "unrelated prose fails", raw: "The response looks mostly reasonable to me.", want: domain.VerdictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := testutils.NewMockBackend("test-model",
				testutils.MockOutcome{Result: ports.JudgmentResult{Raw: tt.raw, Structured: false}})
			client, err := NewClient(be, fastConfig())
			require.NoError(t, err)

			judgment := client.Evaluate(context.Background(), "q", "r")
			assert.Equal(t, tt.want, judgment.Verdict)
			if tt.raw != "" {
				assert.Contains(t, judgment.Reasoning, "fallback text parse")
			}
		})
	}
}

func TestBackoffDelay_Schedules(t *testing.T) {
	cfg := Config{
		MaxRetries:         5,
		BaseDelay:          10 * time.Millisecond,
		MaxDelay:           time.Second,
		RateLimitBaseDelay: 30 * time.Millisecond,
		JitterMax:          5 * time.Millisecond,
		RateLimitJitterMin: 10 * time.Millisecond,
		RateLimitJitterMax: 30 * time.Millisecond,
		ReasoningMaxLen:    200,
		PromptTemplate:     DefaultPromptTemplate,
	}
	client, err := NewClient(testutils.NewMockBackend("m"), cfg)
	require.NoError(t, err)

	t.Run("normal schedule doubles per attempt", func(t *testing.T) {
		for attempt, wantBase := range map[int]time.Duration{
			1: 10 * time.Millisecond,
			2: 20 * time.Millisecond,
			3: 40 * time.Millisecond,
		} {
			delay := client.backoffDelay(attempt, false)
			assert.GreaterOrEqual(t, delay, wantBase, "attempt %d", attempt)
			assert.Less(t, delay, wantBase+cfg.JitterMax, "attempt %d", attempt)
		}
	})

	t.Run("rate limit schedule triples with wider jitter", func(t *testing.T) {
		for attempt, wantBase := range map[int]time.Duration{
			1: 30 * time.Millisecond,
			2: 90 * time.Millisecond,
			3: 270 * time.Millisecond,
		} {
			delay := client.backoffDelay(attempt, true)
			assert.GreaterOrEqual(t, delay, wantBase+cfg.RateLimitJitterMin, "attempt %d", attempt)
			assert.Less(t, delay, wantBase+cfg.RateLimitJitterMax, "attempt %d", attempt)
		}
	})

	t.Run("delay capped at maximum", func(t *testing.T) {
		delay := client.backoffDelay(10, false)
		assert.LessOrEqual(t, delay, cfg.MaxDelay+cfg.JitterMax)
	})
}
