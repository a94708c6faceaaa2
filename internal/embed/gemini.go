// Package embed wraps the Gemini embedding API behind the small
// interface the context retriever consumes.
package embed

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"
)

const defaultModel = "gemini-embedding-001"

// Config configures the Gemini embedding client.
type Config struct {
	APIKey  string
	Model   string // Default: "gemini-embedding-001"
	Timeout time.Duration
}

// ConfigFromEnv builds a Config from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Model:   defaultModel,
		Timeout: 30 * time.Second,
	}
	if k := os.Getenv("POLLGEN_GEMINI_API_KEY"); k != "" {
		cfg.APIKey = k
	}
	if m := os.Getenv("POLLGEN_EMBED_MODEL"); m != "" {
		cfg.Model = m
	}
	return cfg
}

// GeminiEmbedder generates embeddings through the Gemini API.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiEmbedder creates an embedder from configuration.
func NewGeminiEmbedder(ctx context.Context, cfg Config) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required for embeddings")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &GeminiEmbedder{client: client, model: model, timeout: cfg.Timeout}, nil
}

// EmbedQuery embeds a single query text.
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := g.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of document texts in one call.
func (g *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return g.embed(ctx, texts)
}

func (g *GeminiEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		}
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d embeddings", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vec := make([]float64, len(e.Values))
		for j, v := range e.Values {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}

	return vectors, nil
}
