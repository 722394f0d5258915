package backend

import (
	"github.com/ahrav/go-verdict/internal/ports"
)

const (
	// CerebrasDefaultModel is the default Cerebras judgment model.
	CerebrasDefaultModel = "llama3.1-8b"

	// CerebrasDefaultBaseURL is Cerebras' OpenAI-compatible endpoint.
	CerebrasDefaultBaseURL = "https://api.cerebras.ai/v1"
)

func init() {
	Register("cerebras", newCerebrasBackend)
}

// newCerebrasBackend creates a backend for Cerebras' hosted inference.
// Cerebras speaks the OpenAI chat-completions wire format, so the adapter
// reuses the OpenAI implementation with the Cerebras endpoint and model
// defaults. Callers typically pair this provider with a larger retry budget
// since the free tier rate-limits aggressively.
func newCerebrasBackend(config Config) (ports.JudgmentBackend, error) {
	if config.BaseURL == "" {
		config.BaseURL = CerebrasDefaultBaseURL
	}
	return newOpenAICompatibleBackend("cerebras", CerebrasDefaultModel, config)
}
