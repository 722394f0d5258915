// Package testutils provides test doubles for the judgment pipeline.
package testutils

import (
	"context"
	"sync"

	"github.com/ahrav/go-verdict/internal/ports"
)

// Compile-time check to ensure MockBackend implements ports.JudgmentBackend.
var _ ports.JudgmentBackend = (*MockBackend)(nil)

// MockOutcome is one scripted response from the mock backend.
// Exactly one of Result or Err is consulted per call.
type MockOutcome struct {
	// Result is the judgment result to return when Err is nil.
	Result ports.JudgmentResult
	// Err is returned instead of a result when non-nil.
	Err error
}

// MockBackend implements ports.JudgmentBackend with a scripted sequence of
// outcomes, enabling deterministic testing of retry and fallback behavior
// without network mocking frameworks. Once the script is exhausted the last
// outcome repeats.
type MockBackend struct {
	mu       sync.Mutex
	model    string
	outcomes []MockOutcome
	calls    int
	prompts  []string
}

// NewMockBackend creates a MockBackend returning the given outcomes in order.
func NewMockBackend(model string, outcomes ...MockOutcome) *MockBackend {
	return &MockBackend{model: model, outcomes: outcomes}
}

// SubmitJudgment returns the next scripted outcome and records the prompt.
func (m *MockBackend) SubmitJudgment(_ context.Context, prompt string) (ports.JudgmentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	idx := m.calls
	m.calls++

	if len(m.outcomes) == 0 {
		return ports.JudgmentResult{}, nil
	}
	if idx >= len(m.outcomes) {
		idx = len(m.outcomes) - 1
	}

	outcome := m.outcomes[idx]
	if outcome.Err != nil {
		return ports.JudgmentResult{}, outcome.Err
	}
	return outcome.Result, nil
}

// Model returns the mock model identifier.
func (m *MockBackend) Model() string { return m.model }

// Calls reports how many times SubmitJudgment was invoked.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt the backend received.
func (m *MockBackend) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
