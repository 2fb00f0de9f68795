package backends

import (
	"errors"
	"fmt"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedKind is returned when no factory is registered for the
	// configured backend kind
	ErrUnsupportedKind = errors.New("unsupported backend kind")

	// ErrMissingCredentials is returned when a backend is configured
	// without the credentials its kind requires
	ErrMissingCredentials = errors.New("missing credentials")
)

// Factory builds a Backend from its configuration.
type Factory func(cfg config.BackendConfig, logger *zap.Logger) (Backend, error)

// factories maps kind strings to constructors. Keeping the router closed
// over concrete wire formats: adding a kind means adding an entry here.
var factories = map[string]Factory{
	"openai":     NewOpenAI,
	"anthropic":  NewAnthropic,
	"gemini":     NewGemini,
	"openrouter": NewOpenRouter,
	"grok":       NewGrok,
}

// Kinds returns the registered backend kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	return kinds
}

// New constructs the concrete backend for cfg.Kind. Configuration problems
// (unknown kind, missing credentials) are construction-time errors; the
// caller excludes such backends from the candidate pool without failing the
// process.
func New(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	factory, ok := factories[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w: %s", cfg.ID, ErrUnsupportedKind, cfg.Kind)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("backend %q: %w", cfg.ID, ErrMissingCredentials)
	}
	return factory(cfg, logger)
}
