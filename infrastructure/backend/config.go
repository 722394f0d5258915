package backend

import (
	"fmt"
	"slices"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// Config holds all configuration options for constructing a judgment
// backend. Configuration is immutable after construction; constructors fail
// fast on missing credentials rather than deferring the failure to the
// first call.
type Config struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for judgment requests.
	// Leave empty to use the provider's default judgment model.
	Model string

	// BaseURL overrides the default API endpoint for the provider.
	// Leave empty to use the provider's default endpoint.
	BaseURL string

	// Timeout sets the maximum duration for individual requests.
	// Zero value means no client-side timeout.
	Timeout time.Duration

	// SupportedModels optionally restricts which models the backend will
	// accept. When non-empty, construction fails for models outside the
	// set. Supplying the set at construction keeps provider model
	// inventories as configuration data rather than code.
	SupportedModels []string

	// Middleware allows custom middleware insertion around the backend.
	// These are applied in the order specified, with the first entry
	// outermost.
	Middleware []Middleware
}

// Factory creates a ports.JudgmentBackend implementation from configuration.
// This function signature allows the provider registry to create backend
// instances without knowing their specific implementation details.
type Factory func(Config) (ports.JudgmentBackend, error)

// Provider factory registry for extensibility.
// This allows registration of custom providers at runtime
// while maintaining type safety and initialization validation.
var factories = map[string]Factory{}

// Register adds a backend factory under the given provider name.
// This enables extension with additional providers without modifying the
// core package.
func Register(providerType string, factory Factory) {
	factories[providerType] = factory
}

// New creates a judgment backend for the named provider with the supplied
// configuration, wrapped in any configured middleware. It returns a
// configuration error when the provider is unknown, the credential is
// missing, or the model is outside the configured supported set.
func New(providerType string, config Config) (ports.JudgmentBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("provider %s: %w", providerType, ErrEmptyAPIKey)
	}

	factory, ok := factories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	if config.Model != "" && len(config.SupportedModels) > 0 &&
		!slices.Contains(config.SupportedModels, config.Model) {
		return nil, fmt.Errorf("provider %s, model %s: %w", providerType, config.Model, ErrUnsupportedModel)
	}

	be, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", providerType, err)
	}

	// Apply middleware in reverse order so the first entry is the outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		be = config.Middleware[i](be)
	}

	return be, nil
}
