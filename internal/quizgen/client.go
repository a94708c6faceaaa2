package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/llm"
	"github.com/lectio/pollgen/internal/quiz"
)

// ClientConfig tunes one question-generation client.
type ClientConfig struct {
	// Structured requests native structured output and server-side
	// schema enforcement. Off for the local-model path, whose replies
	// are free text parsed by bracket extraction.
	Structured bool

	// AllowDegraded substitutes deterministic placeholder questions when
	// the reply is unparseable, flagged UsedFallback in the returned
	// metadata. Never enabled on primary-path clients.
	AllowDegraded bool

	MaxTokens   int
	Temperature float64
}

// Client turns transcript text into raw questions through one provider.
// It sends exactly one request per Generate call; any retry policy lives
// inside the provider's decorator stack.
type Client struct {
	provider llm.Provider
	config   ClientConfig
}

// NewClient creates a question-generation client over the given provider.
func NewClient(provider llm.Provider, cfg ClientConfig) *Client {
	return &Client{provider: provider, config: cfg}
}

// Provider returns the underlying provider's name.
func (c *Client) Provider() string {
	return c.provider.Name()
}

// batchOutput is the reply shape before normalization.
type batchOutput struct {
	Summary   string             `json:"summary"`
	Questions []quiz.RawQuestion `json:"questions"`
}

// Generate produces raw questions for the request. The returned metadata
// reports the serving model and latency even on parse failure.
func (c *Client) Generate(ctx context.Context, req Request, count int, items []history.ContextItem) ([]quiz.RawQuestion, string, Metadata, error) {
	start := time.Now()
	meta := Metadata{
		Provider: c.provider.Name(),
		Model:    c.provider.ModelID(),
	}

	llmReq := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, count, items)},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if c.config.Structured {
		llmReq.Schema = BatchSchema
	}

	resp, err := c.provider.Generate(ctx, llmReq)
	meta.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, "", meta, err
	}

	meta.Model = resp.Model

	batch, perr := c.parseReply(resp.Content)
	if perr != nil {
		if c.config.AllowDegraded {
			meta.UsedFallback = true
			return placeholderQuestions(count), "", meta, nil
		}
		return nil, "", meta, perr
	}

	return batch.Questions, batch.Summary, meta, nil
}

// parseReply decodes the provider reply into a batch. Structured replies
// are already schema-validated JSON; free-text replies go through fence
// stripping and bracket extraction first. Parse failures carry a raw
// excerpt so the broken reply is diagnosable from the error alone.
func (c *Client) parseReply(content json.RawMessage) (*batchOutput, error) {
	text := string(content)
	if !c.config.Structured {
		extracted, err := extractJSON(text)
		if err != nil {
			return nil, &llm.ErrInvalidResponse{
				Content: content,
				Err:     fmt.Errorf("%w; raw reply: %s", err, excerpt(text, 500)),
			}
		}
		text = extracted
	}

	var batch batchOutput
	if err := json.Unmarshal([]byte(text), &batch); err != nil {
		// A bare array of questions (no wrapper object) also occurs in
		// the wild with smaller models.
		var questions []quiz.RawQuestion
		if arrErr := json.Unmarshal([]byte(text), &questions); arrErr == nil && len(questions) > 0 {
			return &batchOutput{Questions: questions}, nil
		}
		return nil, &llm.ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("decode question batch: %w; raw reply: %s", err, excerpt(text, 500)),
		}
	}

	return &batch, nil
}

// placeholderQuestions is the degraded-mode output: fixed, obviously
// generic questions that keep an offline demo alive. Each one passes
// normalization so downstream handling is uniform.
func placeholderQuestions(count int) []quiz.RawQuestion {
	templates := []quiz.RawQuestion{
		{
			Type:          string(quiz.TypeTrueFalse),
			Difficulty:    string(quiz.DifficultyEasy),
			QuestionText:  "The speaker covered this topic in the most recent part of the lecture.",
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
			Explanation:   "Placeholder question generated while the model was unavailable.",
		},
		{
			Type:          string(quiz.TypeMultipleChoice),
			Difficulty:    string(quiz.DifficultyEasy),
			QuestionText:  "Which activity best matches what the class just heard?",
			Options:       []string{"A lecture segment", "A group exercise", "A written exam", "A film screening"},
			CorrectAnswer: "A lecture segment",
			Explanation:   "Placeholder question generated while the model was unavailable.",
		},
	}

	if count > len(templates) {
		count = len(templates)
	}
	if count < 1 {
		count = 1
	}
	return templates[:count]
}
