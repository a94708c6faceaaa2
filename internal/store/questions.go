package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/quiz"
)

// QuestionRecord is a persisted question row.
type QuestionRecord struct {
	ID            string    `db:"id"`
	RoomID        string    `db:"room_id"`
	SessionID     string    `db:"session_id"`
	TranscriptID  string    `db:"transcript_id"`
	SegmentID     string    `db:"segment_id"`
	Category      string    `db:"category"`
	Type          string    `db:"type"`
	Difficulty    string    `db:"difficulty"`
	QuestionText  string    `db:"question_text"`
	Options       string    `db:"options"`
	CorrectAnswer string    `db:"correct_answer"`
	CorrectIndex  int       `db:"correct_index"`
	Explanation   string    `db:"explanation"`
	Provider      string    `db:"provider"`
	Model         string    `db:"model"`
	UsedFallback  bool      `db:"used_fallback"`
	CreatedAt     time.Time `db:"created_at"`
}

// SaveQuestions persists a normalized batch for the scope in a single
// transaction. Question ids are the primary key, so a replayed batch
// fails instead of duplicating rows.
func (s *Store) SaveQuestions(ctx context.Context, scope quiz.Scope, category string, questions []quiz.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO questions
		(id, room_id, session_id, transcript_id, segment_id, category,
		 type, difficulty, question_text, options, correct_answer,
		 correct_index, explanation, provider, model, used_fallback, created_at)
		VALUES (:id, :room_id, :session_id, :transcript_id, :segment_id, :category,
		 :type, :difficulty, :question_text, :options, :correct_answer,
		 :correct_index, :explanation, :provider, :model, :used_fallback, :created_at)`

	now := time.Now().UTC()
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}

		rec := QuestionRecord{
			ID:            q.ID,
			RoomID:        scope.RoomID,
			SessionID:     scope.SessionID,
			TranscriptID:  scope.TranscriptID,
			SegmentID:     scope.SegmentID,
			Category:      category,
			Type:          string(q.Type),
			Difficulty:    string(q.Difficulty),
			QuestionText:  q.Text,
			Options:       string(opts),
			CorrectAnswer: q.CorrectAnswer,
			CorrectIndex:  q.CorrectIndex,
			Explanation:   q.Explanation,
			Provider:      q.Provenance.Provider,
			Model:         q.Provenance.Model,
			UsedFallback:  q.Provenance.UsedFallback,
			CreatedAt:     now,
		}
		if _, err := tx.NamedExecContext(ctx, insert, rec); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FindRecentByScope returns up to limit questions for the scope and
// category, most recent first. Implements the retriever's Store.
func (s *Store) FindRecentByScope(ctx context.Context, scope quiz.Scope, category string, limit int) ([]history.HistoricalQuestion, error) {
	const query = `SELECT question_text, correct_answer, created_at
		FROM questions
		WHERE room_id = ? AND session_id = ? AND category = ?
		ORDER BY created_at DESC
		LIMIT ?`

	var out []history.HistoricalQuestion
	if err := s.db.SelectContext(ctx, &out, query, scope.RoomID, scope.SessionID, category, limit); err != nil {
		return nil, fmt.Errorf("query question history: %w", err)
	}
	return out, nil
}

// ListQuestions returns full question rows for a scope, most recent
// first, across all categories.
func (s *Store) ListQuestions(ctx context.Context, scope quiz.Scope, limit int) ([]QuestionRecord, error) {
	const query = `SELECT * FROM questions
		WHERE room_id = ? AND session_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	var out []QuestionRecord
	if err := s.db.SelectContext(ctx, &out, query, scope.RoomID, scope.SessionID, limit); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}
