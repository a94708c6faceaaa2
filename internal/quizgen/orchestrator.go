package quizgen

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/llm"
	"github.com/lectio/pollgen/internal/quiz"
)

// Orchestrator coordinates one generation request end to end: count
// policy, context retrieval, the sequential provider fallback chain,
// normalization, and the persistence + notification handoff.
//
// It holds no mutable state of its own; concurrent calls are independent.
// Deduplicating concurrent requests for the same scope is the caller's
// job, not the orchestrator's.
type Orchestrator struct {
	clients   []*Client
	retriever ContextRetriever
	saver     Saver
	notifier  Notifier
	config    Config
	logger    *slog.Logger
}

// New constructs an Orchestrator. Every dependency is passed explicitly;
// retriever, saver, and notifier may be nil, which disables context
// retrieval, persistence, and notification respectively.
func New(clients []*Client, retriever ContextRetriever, saver Saver, notifier Notifier, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		clients:   clients,
		retriever: retriever,
		saver:     saver,
		notifier:  notifier,
		config:    cfg,
		logger:    logger,
	}
}

// GenerateQuestions runs the fallback chain for one request. It returns
// an error only when the source text is rejected up front or every
// provider in the chain has failed; a persistence failure after a
// successful generation is surfaced on Result.SaveErr instead.
func (o *Orchestrator) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	trimmed := strings.TrimSpace(req.SourceText)
	if len(trimmed) < o.config.MinSourceChars {
		return nil, &ErrSourceTooShort{Length: len(trimmed), Min: o.config.MinSourceChars}
	}

	purpose := "segment-questions"
	if req.Holistic {
		purpose = "holistic-questions"
	}
	ctx = llm.WithPurpose(ctx, purpose)

	count := questionCount(req, o.config)

	// Context retrieval is provider-independent, so it happens once and
	// is reused across every fallback attempt.
	items := o.retrieveContext(ctx, req)

	var attempts []ProviderFailure
	var attempted []string

	for _, client := range o.clients {
		attempted = append(attempted, client.Provider())

		raws, summary, meta, err := client.Generate(ctx, req, count, items)
		if err != nil {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "provider attempt failed",
				slog.String("provider", client.Provider()),
				slog.String("error", err.Error()),
			)
			attempts = append(attempts, ProviderFailure{Provider: client.Provider(), Err: err})
			continue
		}

		result := o.finishGeneration(ctx, req, raws, summary, meta, items, attempted)
		result.TotalLatencyMs = time.Since(start).Milliseconds()
		return result, nil
	}

	return nil, &AggregatedProviderFailure{Attempts: attempts}
}

// retrieveContext fetches dedup context, degrading to none on any
// failure. Context is an enhancement, never a dependency.
func (o *Orchestrator) retrieveContext(ctx context.Context, req Request) []history.ContextItem {
	if o.retriever == nil {
		return nil
	}

	topK := req.ContextLimit
	if topK <= 0 {
		topK = o.config.DefaultTopK
	}

	items, err := o.retriever.RetrieveContext(ctx, req.SourceText, req.Scope, topK)
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "context retrieval failed, proceeding without context",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return items
}

// finishGeneration normalizes a successful provider reply and hands the
// surviving questions to the persistence and notification boundaries.
func (o *Orchestrator) finishGeneration(ctx context.Context, req Request, raws []quiz.RawQuestion, summary string, meta Metadata, items []history.ContextItem, attempted []string) *Result {
	prov := quiz.Provenance{
		Provider:         meta.Provider,
		Model:            meta.Model,
		LatencyMs:        meta.LatencyMs,
		UsedFallback:     meta.UsedFallback,
		ContextItemsUsed: len(items),
	}

	questions, dropped := quiz.NormalizeBatch(raws, prov)
	for _, d := range dropped {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "dropped invalid question",
			slog.String("provider", meta.Provider),
			slog.String("reason", d.Error()),
		)
	}

	result := &Result{
		Questions:              questions,
		Summary:                summary,
		ProviderUsed:           meta.Provider,
		FallbackChainAttempted: attempted,
	}

	if len(questions) == 0 {
		if len(raws) == 0 {
			result.EmptyReason = "provider returned no questions"
		} else {
			result.EmptyReason = "all generated questions failed validation"
		}
		return result
	}

	// Persistence failures are reported on the result, never conflated
	// with generation failure. Notification is fire-and-forget.
	if o.saver != nil {
		if err := o.saver.SaveQuestions(ctx, req.Scope, req.Category(), questions); err != nil {
			o.logger.LogAttrs(ctx, slog.LevelError, "failed to persist questions",
				slog.String("error", err.Error()),
			)
			result.SaveErr = err
		}
	}

	if o.notifier != nil {
		o.notifier.Publish(req.ChannelKey(), Notification{
			Scope:       req.Scope,
			Questions:   questions,
			Summary:     summary,
			GeneratedAt: time.Now().UTC(),
		})
	}

	return result
}
