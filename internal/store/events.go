package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lectio/pollgen/internal/llm"
)

// AppendLLMRequest records a model request event. Implements llm.EventRepo.
func (s *Store) AppendLLMRequest(ctx context.Context, data llm.LLMRequestEvent) error {
	const insert = `INSERT INTO llm_events
		(provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, insert,
		data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}
