package llm

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OllamaProvider is the local-model question-generation client. Ollama
// serves an OpenAI-compatible endpoint on localhost; no credentials are
// involved and inference can take minutes, so the configured timeout is
// a multi-minute ceiling.
//
// Local models are unreliable JSON emitters, so the question client
// sends no schema to this provider and parses the free-text reply
// itself.
type OllamaProvider struct {
	*openAICompatProvider
}

// NewOllamaProvider creates a provider targeting a local Ollama server.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	// The SDK requires a bearer token; Ollama accepts any value.
	inner := newOpenAICompatProvider("ollama", "ollama", cfg.Model, baseURL, cfg.Timeout)
	return &OllamaProvider{openAICompatProvider: inner}, nil
}
