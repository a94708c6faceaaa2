package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/lectio/pollgen/internal/logging"
	"github.com/lectio/pollgen/internal/quiz"
)

type fakeStore struct {
	byCategory map[string][]HistoricalQuestion
	err        error
}

func (f *fakeStore) FindRecentByScope(_ context.Context, _ quiz.Scope, category string, limit int) ([]HistoricalQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	qs := f.byCategory[category]
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, nil
}

// fakeEmbedder maps known strings to fixed 2-d vectors so similarity
// ordering is predictable. Unknown text embeds orthogonal to everything.
type fakeEmbedder struct {
	vectors  map[string][]float64
	queryErr error
	docsErr  error
}

func (f *fakeEmbedder) embed(text string) []float64 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float64{0, 0}
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float64, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.embed(text), nil
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.embed(t)
	}
	return out, nil
}

func newTestRetriever(store Store, embedder Embedder) *Retriever {
	return NewRetriever(store, embedder, logging.NewLogger(io.Discard, slog.LevelDebug))
}

func TestRetrieveContext_RanksBySimilarity(t *testing.T) {
	store := &fakeStore{byCategory: map[string][]HistoricalQuestion{
		quiz.CategorySegment: {
			{QuestionText: "What is mitosis?", CorrectAnswer: "Cell division", CreatedAt: time.Now()},
			{QuestionText: "What year was the battle?", CorrectAnswer: "1066", CreatedAt: time.Now().Add(-time.Minute)},
		},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"cells dividing in two":                       {1, 0},
		"Q: What is mitosis? | A: Cell division":      {1, 0.1},
		"Q: What year was the battle? | A: 1066":      {0, 1},
	}}

	items, err := newTestRetriever(store, embedder).RetrieveContext(
		context.Background(), "cells dividing in two", quiz.Scope{RoomID: "r1"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Text != "Q: What is mitosis? | A: Cell division" {
		t.Errorf("most relevant item = %q", items[0].Text)
	}
	if items[0].Score <= items[1].Score {
		t.Errorf("scores not descending: %f, %f", items[0].Score, items[1].Score)
	}
	for _, it := range items {
		if it.Score < 0 || it.Score > 1 {
			t.Errorf("score %f out of [0,1]", it.Score)
		}
	}
}

func TestRetrieveContext_TopKTruncates(t *testing.T) {
	store := &fakeStore{byCategory: map[string][]HistoricalQuestion{
		quiz.CategorySegment: {
			{QuestionText: "a", CorrectAnswer: "1", CreatedAt: time.Now()},
			{QuestionText: "b", CorrectAnswer: "2", CreatedAt: time.Now()},
			{QuestionText: "c", CorrectAnswer: "3", CreatedAt: time.Now()},
		},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float64{}}

	items, err := newTestRetriever(store, embedder).RetrieveContext(
		context.Background(), "query", quiz.Scope{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestRetrieveContext_PoolsTimerCategory(t *testing.T) {
	now := time.Now()
	store := &fakeStore{byCategory: map[string][]HistoricalQuestion{
		quiz.CategorySegment: {
			{QuestionText: "from segment", CorrectAnswer: "s", CreatedAt: now.Add(-time.Hour)},
		},
		quiz.CategoryTimer: {
			{QuestionText: "from timer", CorrectAnswer: "t", CreatedAt: now},
		},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float64{}}

	items, err := newTestRetriever(store, embedder).RetrieveContext(
		context.Background(), "query", quiz.Scope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want pooled 2", len(items))
	}
	// Equal scores, so recency decides: the timer question is newer.
	if items[0].Text != "Q: from timer | A: t" {
		t.Errorf("tiebreak order wrong, first item = %q", items[0].Text)
	}
}

func TestRetrieveContext_EmptyHistory(t *testing.T) {
	store := &fakeStore{byCategory: map[string][]HistoricalQuestion{}}
	embedder := &fakeEmbedder{}

	items, err := newTestRetriever(store, embedder).RetrieveContext(
		context.Background(), "query", quiz.Scope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items, got %v", items)
	}
}

// Embedding-service outages degrade to no context, never to a failed
// generation.
func TestRetrieveContext_EmbedderFailureDegrades(t *testing.T) {
	store := &fakeStore{byCategory: map[string][]HistoricalQuestion{
		quiz.CategorySegment: {
			{QuestionText: "q", CorrectAnswer: "a", CreatedAt: time.Now()},
		},
	}}

	for name, embedder := range map[string]*fakeEmbedder{
		"query embedding fails":    {queryErr: errors.New("quota exceeded")},
		"document embedding fails": {docsErr: errors.New("quota exceeded")},
	} {
		items, err := newTestRetriever(store, embedder).RetrieveContext(
			context.Background(), "query", quiz.Scope{}, 5)
		if err != nil {
			t.Errorf("%s: error must be swallowed, got %v", name, err)
		}
		if items != nil {
			t.Errorf("%s: expected nil items, got %v", name, items)
		}
	}
}

func TestRetrieveContext_StoreFailureDegrades(t *testing.T) {
	store := &fakeStore{err: errors.New("database locked")}
	embedder := &fakeEmbedder{}

	items, err := newTestRetriever(store, embedder).RetrieveContext(
		context.Background(), "query", quiz.Scope{}, 5)
	if err != nil {
		t.Fatalf("store failure must be swallowed, got %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items, got %v", items)
	}
}

func TestRetrieveContext_ZeroTopK(t *testing.T) {
	items, err := newTestRetriever(&fakeStore{}, &fakeEmbedder{}).RetrieveContext(
		context.Background(), "query", quiz.Scope{}, 0)
	if err != nil || items != nil {
		t.Errorf("topK 0 should be a no-op, got %v, %v", items, err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		got := cosineSimilarity(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: got %f, want %f", tt.name, got, tt.want)
		}
	}
}
