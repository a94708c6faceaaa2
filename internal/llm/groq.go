package llm

import "fmt"

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider is the fast-inference question-generation client. Groq
// exposes an OpenAI-compatible API, so the underlying implementation is
// shared with the local-model client.
type GroqProvider struct {
	*openAICompatProvider
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	inner := newOpenAICompatProvider("groq", cfg.APIKey, cfg.Model, baseURL, cfg.Timeout)
	return &GroqProvider{openAICompatProvider: inner}, nil
}
