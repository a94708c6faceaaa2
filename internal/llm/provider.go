package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for talking to a remote model.
// Question-generation clients build a Request and receive the model's
// reply as raw JSON (or raw text wrapped as JSON when no schema is set).
type Provider interface {
	// Generate sends a single request to the remote model. When the
	// request carries a Schema, the provider uses its native structured
	// output mechanism and the returned Content is the validated JSON.
	// Exactly one outbound call per invocation; retry policy, if any,
	// is layered on by a decorator.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the short provider name used in fallback chains and
	// failure reports, e.g. "anthropic", "groq", "ollama".
	Name() string

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Question generation is single-turn,
	// so this normally holds one user message.
	Messages []Message

	// Schema is the JSON Schema the reply must conform to. When set,
	// providers that support structured output enforce it natively and
	// the reply is validated against it before being returned. When nil,
	// Content is the raw reply text.
	Schema *Schema

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero value means
	// deterministic.
	Temperature float64
}

// Message is a single conversation message.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "quiz-batch".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. Validated JSON when the request
	// carried a Schema, raw reply text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
