package quizgen

import (
	"context"
	"time"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/quiz"
)

// Request is the ephemeral value object for one generation invocation.
// It is owned by the call that created it and never persisted.
type Request struct {
	// SourceText is the transcript block to generate questions from.
	SourceText string

	// Scope partitions history retrieval and persistence.
	Scope quiz.Scope

	// RequestedCount pins the question count. Zero means derive it from
	// the source length.
	RequestedCount int

	// AllowedTypes restricts generated question types. Empty means both.
	AllowedTypes []quiz.Type

	// AllowedDifficulties restricts difficulty. Empty means all three.
	AllowedDifficulties []quiz.Difficulty

	// ContextLimit caps how many prior-question context items are fed
	// to the prompt. Zero means the configured default.
	ContextLimit int

	// Holistic marks whole-session generation, which uses the higher
	// question-count ceiling and the holistic history category.
	Holistic bool
}

// Category returns the history category this request's output belongs to.
func (r Request) Category() string {
	if r.Holistic {
		return quiz.CategoryHolistic
	}
	return quiz.CategorySegment
}

// ChannelKey returns the notification channel for this request's room.
func (r Request) ChannelKey() string {
	return "room:" + r.Scope.RoomID
}

// Result is the outcome of one orchestration. It exists only for the
// duration of the call; the caller consumes it and the orchestrator
// retains nothing.
type Result struct {
	Questions              []quiz.Question `json:"questions"`
	Summary                string          `json:"summary,omitempty"`
	ProviderUsed           string          `json:"provider_used"`
	FallbackChainAttempted []string        `json:"fallback_chain_attempted"`
	TotalLatencyMs         int64           `json:"total_latency_ms"`

	// EmptyReason distinguishes a successful generation whose questions
	// all failed validation from a provider failure. Set only when
	// Questions is empty.
	EmptyReason string `json:"empty_reason,omitempty"`

	// SaveErr carries a persistence-boundary failure. Generation is
	// still considered successful; storage failures are surfaced
	// separately, never conflated with provider failures.
	SaveErr error `json:"-"`
}

// Metadata describes one provider attempt.
type Metadata struct {
	Provider     string
	Model        string
	LatencyMs    int64
	UsedFallback bool
}

// Notification is the payload published to a room channel after a batch
// is persisted.
type Notification struct {
	Scope       quiz.Scope      `json:"scope"`
	Questions   []quiz.Question `json:"questions"`
	Summary     string          `json:"summary"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// ContextRetriever supplies dedup context from prior questions. It never
// fails the generation: degraded retrieval yields an empty slice.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, sourceText string, scope quiz.Scope, topK int) ([]history.ContextItem, error)
}

// Saver is the persistence boundary the orchestrator hands normalized
// questions to. Write-concurrency guarantees (unique ids) live behind it.
type Saver interface {
	SaveQuestions(ctx context.Context, scope quiz.Scope, category string, questions []quiz.Question) error
}

// Notifier is the fire-and-forget notification boundary. Publish must
// not block and its failures must not fail the generation call.
type Notifier interface {
	Publish(channelKey string, n Notification)
}
