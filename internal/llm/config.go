package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for all question-generation providers.
type Config struct {
	Anthropic AnthropicConfig
	Groq      GroqConfig
	Ollama    OllamaConfig
	Retry     RetryConfig
}

// AnthropicConfig configures the cloud provider.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"

	// Timeout bounds a single request. Cloud replies are fast, so the
	// ceiling is short.
	Timeout time.Duration
}

// GroqConfig configures the fast-inference provider. Groq exposes an
// OpenAI-compatible API.
type GroqConfig struct {
	APIKey  string
	Model   string // Default: "llama-3.3-70b-versatile"
	BaseURL string // Default: "https://api.groq.com/openai/v1"
	Timeout time.Duration
}

// OllamaConfig configures the local-model provider. No API key; the
// timeout is a multi-minute ceiling because local inference is slow.
type OllamaConfig struct {
	Model   string // Default: "llama3.1"
	BaseURL string // Default: "http://localhost:11434/v1"
	Timeout time.Duration

	// AllowDegraded enables deterministic placeholder questions when the
	// local model's reply is unparseable. Placeholders are flagged with
	// UsedFallback provenance so consumers can filter them. Off by
	// default; intended for offline demos only.
	AllowDegraded bool
}

// RetryConfig configures the bounded retry decorator. Only the Groq
// client is wrapped with it: Groq reports transient 503s under load,
// and a short local retry avoids burning a fallback hop on them.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model:   "claude-haiku",
			Timeout: 60 * time.Second,
		},
		Groq: GroqConfig{
			Model:   "llama-3.3-70b-versatile",
			BaseURL: defaultGroqBaseURL,
			Timeout: 30 * time.Second,
		},
		Ollama: OllamaConfig{
			Model:   "llama3.1",
			BaseURL: defaultOllamaBaseURL,
			Timeout: 5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if k := os.Getenv("POLLGEN_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("POLLGEN_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}
	if d := envDuration("POLLGEN_ANTHROPIC_TIMEOUT"); d > 0 {
		cfg.Anthropic.Timeout = d
	}

	if k := os.Getenv("POLLGEN_GROQ_API_KEY"); k != "" {
		cfg.Groq.APIKey = k
	}
	if m := os.Getenv("POLLGEN_GROQ_MODEL"); m != "" {
		cfg.Groq.Model = m
	}
	if u := os.Getenv("POLLGEN_GROQ_BASE_URL"); u != "" {
		cfg.Groq.BaseURL = u
	}
	if d := envDuration("POLLGEN_GROQ_TIMEOUT"); d > 0 {
		cfg.Groq.Timeout = d
	}

	if m := os.Getenv("POLLGEN_OLLAMA_MODEL"); m != "" {
		cfg.Ollama.Model = m
	}
	if u := os.Getenv("POLLGEN_OLLAMA_BASE_URL"); u != "" {
		cfg.Ollama.BaseURL = u
	}
	if d := envDuration("POLLGEN_OLLAMA_TIMEOUT"); d > 0 {
		cfg.Ollama.Timeout = d
	}
	if v, err := strconv.ParseBool(os.Getenv("POLLGEN_OLLAMA_ALLOW_DEGRADED")); err == nil {
		cfg.Ollama.AllowDegraded = v
	}

	return cfg
}

// Validate checks that the named provider has its required settings.
func (c Config) Validate(provider string) error {
	switch provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("POLLGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "groq":
		if c.Groq.APIKey == "" {
			return fmt.Errorf("POLLGEN_GROQ_API_KEY is required for the groq provider")
		}
	case "ollama", "mock":
		// No credentials needed.
	default:
		return fmt.Errorf("unknown provider: %q", provider)
	}
	return nil
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
