// Package ports defines the capability interfaces that decouple the judge
// core from concrete backend and observability implementations.
package ports

import "context"

// JudgmentResult is the raw outcome of one backend call before the judge
// client normalizes it into a domain.Judgment.
type JudgmentResult struct {
	// Verdict is the enumerated verdict string from the backend's
	// structured output. Only meaningful when Structured is true; the
	// schema constrains it to "pass" or "fail", but the judge client
	// still treats an empty value as a fail by default.
	Verdict string

	// Reasoning is the backend's brief explanation for the verdict.
	Reasoning string

	// Raw holds the plain completion text when the backend could not
	// produce structured output. Only meaningful when Structured is false.
	Raw string

	// Structured reports whether the backend honored the verdict schema.
	// When false the judge client falls back to constrained text matching
	// on Raw, which is a degraded path reserved for legacy backend modes.
	Structured bool
}

// JudgmentBackend is the capability consumed by the judge client: submit one
// judgment prompt and receive either a schema-constrained result or a
// backend error.
//
// Implementations must prefer constrained structured output (tool or
// function calling with a closed {"pass","fail"} enumeration) over free-text
// completion. Implementations must be safe for concurrent use.
type JudgmentBackend interface {
	// SubmitJudgment sends the judgment prompt to the backend and returns
	// its result. Errors should be backend.BackendError values so the
	// caller can classify them for retry decisions.
	SubmitJudgment(ctx context.Context, prompt string) (JudgmentResult, error)

	// Model returns the model identifier this backend is configured with,
	// for diagnostics and metric labels.
	Model() string
}
