// Package history retrieves prior generated questions relevant to new
// transcript text, for duplicate suppression in the generation prompt.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/lectio/pollgen/internal/quiz"
)

// historyWindow caps how many prior questions are loaded per source
// category before ranking.
const historyWindow = 50

// ContextItem is one prior question judged relevant to new source text.
// Purely advisory; never persisted.
type ContextItem struct {
	Text  string
	Score float64 // relevance in [0,1]
}

// HistoricalQuestion is the minimal shape the retriever needs from
// persisted questions.
type HistoricalQuestion struct {
	QuestionText  string    `db:"question_text"`
	CorrectAnswer string    `db:"correct_answer"`
	CreatedAt     time.Time `db:"created_at"`
}

// Store is the read side of the persistence boundary.
type Store interface {
	// FindRecentByScope returns up to limit questions for the scope and
	// category, most recent first.
	FindRecentByScope(ctx context.Context, scope quiz.Scope, category string, limit int) ([]HistoricalQuestion, error)
}

// Embedder turns text into vectors.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// Retriever ranks prior questions against new transcript text by
// embedding similarity.
type Retriever struct {
	store    Store
	embedder Embedder
	logger   *slog.Logger
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(store Store, embedder Embedder, logger *slog.Logger) *Retriever {
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// RetrieveContext returns the topK most relevant prior questions for the
// scope, most relevant first, ties broken by recency. Zero history is
// not an error: generation simply proceeds without context. Embedding
// failures degrade the same way; retrieval never fails a generation.
func (r *Retriever) RetrieveContext(ctx context.Context, sourceText string, scope quiz.Scope, topK int) ([]ContextItem, error) {
	if topK <= 0 {
		return nil, nil
	}

	prior, err := r.loadHistory(ctx, scope)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "history load failed, skipping context",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	if len(prior) == 0 {
		return nil, nil
	}

	docs := make([]string, len(prior))
	for i, q := range prior {
		docs[i] = fmt.Sprintf("Q: %s | A: %s", q.QuestionText, q.CorrectAnswer)
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, sourceText)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "query embedding failed, skipping context",
			slog.String("error", err.Error()))
		return nil, nil
	}

	docVecs, err := r.embedder.EmbedDocuments(ctx, docs)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "document embedding failed, skipping context",
			slog.String("error", err.Error()))
		return nil, nil
	}

	items := make([]ContextItem, 0, len(docs))
	for i, vec := range docVecs {
		items = append(items, ContextItem{
			Text:  docs[i],
			Score: relevance(queryVec, vec),
		})
	}

	// Stable sort preserves the most-recent-first load order as the
	// tiebreak for equal scores.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > topK {
		items = items[:topK]
	}
	return items, nil
}

// loadHistory pools the segment- and timer-origin histories for the
// scope, merged most recent first.
func (r *Retriever) loadHistory(ctx context.Context, scope quiz.Scope) ([]HistoricalQuestion, error) {
	var merged []HistoricalQuestion
	for _, category := range []string{quiz.CategorySegment, quiz.CategoryTimer} {
		qs, err := r.store.FindRecentByScope(ctx, scope, category, historyWindow)
		if err != nil {
			return nil, fmt.Errorf("load %s history: %w", category, err)
		}
		merged = append(merged, qs...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// relevance maps cosine similarity onto [0,1].
func relevance(a, b []float64) float64 {
	cos := cosineSimilarity(a, b)
	score := (cos + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
