package backend

import "github.com/ahrav/go-verdict/internal/ports"

// Middleware wraps a JudgmentBackend to add cross-cutting functionality.
// This pattern allows composition of features like rate limiting, timeouts,
// metrics collection, and tracing without modifying provider adapters.
type Middleware func(ports.JudgmentBackend) ports.JudgmentBackend
