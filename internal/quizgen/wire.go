package quizgen

import (
	"log/slog"

	"github.com/lectio/pollgen/internal/llm"
)

// BuildClients constructs the question-generation clients for a fallback
// chain, in order. The local-model client is the only free-text parser
// and the only one allowed to run degraded.
func BuildClients(chain []string, llmCfg llm.Config, genCfg Config, repo llm.EventRepo, logger *slog.Logger) ([]*Client, error) {
	providers, err := llm.BuildChain(chain, llmCfg, repo, logger)
	if err != nil {
		return nil, err
	}

	clients := make([]*Client, 0, len(providers))
	for i, provider := range providers {
		name := chain[i]

		clientCfg := ClientConfig{
			Structured:  name != "ollama",
			MaxTokens:   genCfg.MaxTokens,
			Temperature: genCfg.Temperature,
		}
		if name == "ollama" {
			clientCfg.AllowDegraded = llmCfg.Ollama.AllowDegraded
		}

		clients = append(clients, NewClient(provider, clientCfg))
	}

	return clients, nil
}
