package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/llm"
	"github.com/lectio/pollgen/internal/logging"
	"github.com/lectio/pollgen/internal/quiz"
)

func testLogger() *slog.Logger {
	return logging.NewLogger(io.Discard, slog.LevelDebug)
}

// transcript returns a source text comfortably above the minimum length.
func transcript() string {
	return strings.Repeat("The speaker explained cell division in detail. ", 8)
}

type fakeRetriever struct {
	items []history.ContextItem
	calls int
}

func (f *fakeRetriever) RetrieveContext(_ context.Context, _ string, _ quiz.Scope, _ int) ([]history.ContextItem, error) {
	f.calls++
	return f.items, nil
}

type fakeSaver struct {
	saved    [][]quiz.Question
	category string
	err      error
}

func (f *fakeSaver) SaveQuestions(_ context.Context, _ quiz.Scope, category string, qs []quiz.Question) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, qs)
	f.category = category
	return nil
}

type fakeNotifier struct {
	keys     []string
	payloads []Notification
}

func (f *fakeNotifier) Publish(key string, n Notification) {
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, n)
}

func threeQuestionBatch() json.RawMessage {
	return json.RawMessage(`{
		"summary": "Cell division overview.",
		"questions": [
			{
				"type": "multiple_choice", "difficulty": "medium",
				"question_text": "What process splits one cell into two?",
				"options": ["Mitosis", "Osmosis", "Diffusion", "Respiration"],
				"correct_answer": "Mitosis", "correct_index": 0,
				"explanation": "Defined at the start of the segment."
			},
			{
				"type": "true_false", "difficulty": "easy",
				"question_text": "The speaker said mitosis produces two identical cells.",
				"options": ["True", "False"],
				"correct_answer": "true",
				"explanation": "Stated directly."
			},
			{
				"type": "multiple_choice", "difficulty": "hard",
				"question_text": "Which phase was described as the longest?",
				"options": ["Interphase", "Prophase", "Metaphase", "Telophase"],
				"correct_answer": "Interphase", "correct_index": 0,
				"explanation": "The speaker estimated 90 percent of the cycle."
			}
		]
	}`)
}

func clientOf(p llm.Provider) *Client {
	return NewClient(p, ClientConfig{Structured: true, MaxTokens: 1024})
}

func TestGenerateQuestions_RejectsShortSource(t *testing.T) {
	mock := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Content: threeQuestionBatch()})
	orch := New([]*Client{clientOf(mock)}, nil, nil, nil, DefaultConfig(), testLogger())

	_, err := orch.GenerateQuestions(context.Background(), Request{
		SourceText: strings.Repeat("x", 40),
	})

	var short *ErrSourceTooShort
	if !errors.As(err, &short) {
		t.Fatalf("expected ErrSourceTooShort, got %v", err)
	}
	if short.Length != 40 || short.Min != 50 {
		t.Errorf("got %+v", short)
	}
	if mock.CallCount() != 0 {
		t.Error("no provider may be called for a rejected source")
	}
}

// TestGenerateQuestions_FallbackChain is the chain scenario: the first
// provider is down, the second succeeds with a batch containing a
// true_false item whose index must be derived from its answer text.
func TestGenerateQuestions_FallbackChain(t *testing.T) {
	down := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	up := llm.NewNamedMockProvider("fasty", llm.MockResponse{Content: threeQuestionBatch()})
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}

	orch := New([]*Client{clientOf(down), clientOf(up)}, nil, saver, notifier, DefaultConfig(), testLogger())

	result, err := orch.GenerateQuestions(context.Background(), Request{
		SourceText: transcript(),
		Scope:      quiz.Scope{RoomID: "r1", SessionID: "s1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(result.Questions))
	}
	if result.ProviderUsed != "fasty" {
		t.Errorf("provider used = %q", result.ProviderUsed)
	}
	want := []string{"cloudx", "fasty"}
	if len(result.FallbackChainAttempted) != 2 ||
		result.FallbackChainAttempted[0] != want[0] ||
		result.FallbackChainAttempted[1] != want[1] {
		t.Errorf("chain attempted = %v, want %v", result.FallbackChainAttempted, want)
	}

	tf := result.Questions[1]
	if tf.Type != quiz.TypeTrueFalse {
		t.Fatalf("expected true_false at position 1")
	}
	if tf.CorrectIndex != 0 {
		t.Errorf("derived index = %d, want 0", tf.CorrectIndex)
	}
	for _, q := range result.Questions {
		if q.Provenance.Provider != "fasty" {
			t.Errorf("provenance provider = %q", q.Provenance.Provider)
		}
	}

	if len(saver.saved) != 1 || len(saver.saved[0]) != 3 {
		t.Error("expected one persisted batch of 3")
	}
	if saver.category != quiz.CategorySegment {
		t.Errorf("category = %q", saver.category)
	}
	if len(notifier.keys) != 1 || notifier.keys[0] != "room:r1" {
		t.Errorf("notified keys = %v", notifier.keys)
	}
	if notifier.payloads[0].Summary != "Cell division overview." {
		t.Errorf("payload summary = %q", notifier.payloads[0].Summary)
	}
}

func TestGenerateQuestions_AllProvidersFail(t *testing.T) {
	a := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	b := llm.NewNamedMockProvider("fasty", llm.MockResponse{Err: &llm.ErrInvalidResponse{Err: errors.New("gibberish")}})
	c := llm.NewNamedMockProvider("localz", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	orch := New([]*Client{clientOf(a), clientOf(b), clientOf(c)}, nil, nil, nil, DefaultConfig(), testLogger())

	_, err := orch.GenerateQuestions(context.Background(), Request{SourceText: transcript()})

	var agg *AggregatedProviderFailure
	if !errors.As(err, &agg) {
		t.Fatalf("expected AggregatedProviderFailure, got %v", err)
	}
	if len(agg.Attempts) != 3 {
		t.Fatalf("got %d attempts, want 3", len(agg.Attempts))
	}
	wantOrder := []string{"cloudx", "fasty", "localz"}
	for i, attempt := range agg.Attempts {
		if attempt.Provider != wantOrder[i] {
			t.Errorf("attempt %d provider = %q, want %q", i, attempt.Provider, wantOrder[i])
		}
		if attempt.Err == nil {
			t.Errorf("attempt %d missing error", i)
		}
	}
	// The message must name every provider, not just the last.
	for _, name := range wantOrder {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("aggregated error should mention %q: %v", name, err)
		}
	}
}

func TestGenerateQuestions_ContextComputedOnce(t *testing.T) {
	retriever := &fakeRetriever{items: []history.ContextItem{{Text: "Q: prior | A: yes", Score: 0.9}}}
	down := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	up := llm.NewNamedMockProvider("fasty", llm.MockResponse{Content: threeQuestionBatch()})

	orch := New([]*Client{clientOf(down), clientOf(up)}, retriever, nil, nil, DefaultConfig(), testLogger())

	result, err := orch.GenerateQuestions(context.Background(), Request{SourceText: transcript()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever called %d times, want 1 (reused across fallback attempts)", retriever.calls)
	}
	for _, q := range result.Questions {
		if q.Provenance.ContextItemsUsed != 1 {
			t.Errorf("context items used = %d, want 1", q.Provenance.ContextItemsUsed)
		}
	}
	// Both attempts must have seen the context block in their prompt.
	for _, mock := range []*llm.MockProvider{down, up} {
		if !strings.Contains(mock.Calls[0].Messages[0].Content, "Q: prior | A: yes") {
			t.Errorf("%s prompt missing context block", mock.Name())
		}
	}
}

func TestGenerateQuestions_EmptyAfterValidation(t *testing.T) {
	// Every question in the batch is invalid (3 options on an MC).
	bad := json.RawMessage(`{
		"summary": "s",
		"questions": [{
			"type": "multiple_choice", "difficulty": "easy",
			"question_text": "A malformed question with too few options?",
			"options": ["A", "B", "C"],
			"correct_answer": "A",
			"explanation": "e"
		}]
	}`)
	mock := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Content: bad})
	saver := &fakeSaver{}

	orch := New([]*Client{clientOf(mock)}, nil, saver, nil, DefaultConfig(), testLogger())

	result, err := orch.GenerateQuestions(context.Background(), Request{SourceText: transcript()})
	if err != nil {
		t.Fatalf("zero usable questions is not a provider failure: %v", err)
	}
	if len(result.Questions) != 0 {
		t.Fatalf("got %d questions", len(result.Questions))
	}
	if result.EmptyReason == "" {
		t.Error("empty result must carry a descriptive reason")
	}
	if len(saver.saved) != 0 {
		t.Error("empty batch must not be persisted")
	}
}

func TestGenerateQuestions_SaveErrorSurfacedSeparately(t *testing.T) {
	mock := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Content: threeQuestionBatch()})
	saver := &fakeSaver{err: errors.New("disk full")}

	orch := New([]*Client{clientOf(mock)}, nil, saver, nil, DefaultConfig(), testLogger())

	result, err := orch.GenerateQuestions(context.Background(), Request{SourceText: transcript()})
	if err != nil {
		t.Fatalf("storage failure must not fail generation: %v", err)
	}
	if result.SaveErr == nil {
		t.Fatal("expected SaveErr on the result")
	}
	if len(result.Questions) != 3 {
		t.Errorf("questions still returned despite save failure, got %d", len(result.Questions))
	}
}

func TestGenerateQuestions_HolisticCategory(t *testing.T) {
	mock := llm.NewNamedMockProvider("cloudx", llm.MockResponse{Content: threeQuestionBatch()})
	saver := &fakeSaver{}

	orch := New([]*Client{clientOf(mock)}, nil, saver, nil, DefaultConfig(), testLogger())

	_, err := orch.GenerateQuestions(context.Background(), Request{
		SourceText: transcript(),
		Holistic:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saver.category != quiz.CategoryHolistic {
		t.Errorf("category = %q, want holistic", saver.category)
	}
}
