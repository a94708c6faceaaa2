package llm

import (
	"fmt"
	"log/slog"
)

// NewProvider creates a named Provider from configuration, wrapped with
// the event-log decorator. The Groq provider additionally gets the
// bounded retry decorator; other providers surface transient failures
// directly so the orchestrator's fallback chain can act on them.
func NewProvider(name string, cfg Config, repo EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch name {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "groq":
		base, err = NewGroqProvider(cfg.Groq)
	case "ollama":
		base, err = NewOllamaProvider(cfg.Ollama)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	logged := WithEventLog(base, repo, logger)

	if name == "groq" {
		return WithRetry(logged, cfg.Retry), nil
	}
	return logged, nil
}

// BuildChain constructs the providers for a fallback chain, in order.
func BuildChain(names []string, cfg Config, repo EventRepo, logger *slog.Logger) ([]Provider, error) {
	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		p, err := NewProvider(name, cfg, repo, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
