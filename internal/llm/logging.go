package llm

import (
	"context"
	"log/slog"
	"time"
)

// LLMRequestEvent captures one model request for the event log.
type LLMRequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo records model traffic. The store package provides the
// SQLite-backed implementation.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEvent) error
}

// EventLogProvider is a decorator that records every model request as an
// event and logs failures. Recording failures never fail the request.
type EventLogProvider struct {
	inner  Provider
	repo   EventRepo
	logger *slog.Logger
}

// WithEventLog wraps a Provider with event recording. A nil repo disables
// persistence but keeps the slog output.
func WithEventLog(p Provider, repo EventRepo, logger *slog.Logger) Provider {
	return &EventLogProvider{inner: p, repo: repo, logger: logger}
}

func (l *EventLogProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := LLMRequestEvent{
		Provider:  l.inner.Name(),
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: latencyMs,
		Success:   err == nil,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.logger.LogAttrs(ctx, slog.LevelWarn, "model request failed",
			slog.String("provider", data.Provider),
			slog.String("model", data.Model),
			slog.String("purpose", purpose),
			slog.Int64("latency_ms", latencyMs),
			slog.String("error", err.Error()),
		)
	} else {
		l.logger.LogAttrs(ctx, slog.LevelDebug, "model request",
			slog.String("provider", data.Provider),
			slog.String("model", data.Model),
			slog.String("purpose", purpose),
			slog.Int64("latency_ms", latencyMs),
			slog.Int("input_tokens", data.InputTokens),
			slog.Int("output_tokens", data.OutputTokens),
		)
	}

	if l.repo != nil {
		if logErr := l.repo.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record model request event",
				slog.String("error", logErr.Error()))
		}
	}

	return resp, err
}

func (l *EventLogProvider) Name() string {
	return l.inner.Name()
}

func (l *EventLogProvider) ModelID() string {
	return l.inner.ModelID()
}
