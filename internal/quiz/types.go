package quiz

// Type is the question type. Short-answer exists in one provider path
// upstream but is not part of the core contract.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
)

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	return t == TypeMultipleChoice || t == TypeTrueFalse
}

// OptionCount returns the required number of options for this type.
func (t Type) OptionCount() int {
	if t == TypeTrueFalse {
		return 2
	}
	return 4
}

// Difficulty is the question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// RawQuestion is the single shape every provider client produces before
// normalization. Provider-specific response parsing funnels into this
// type; the normalizer is the only path from here to a Question.
type RawQuestion struct {
	ID            string   `json:"id,omitempty"`
	Type          string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	// CorrectIndex is a pointer so "absent" is distinguishable from 0.
	// When absent the normalizer derives it from CorrectAnswer.
	CorrectIndex *int   `json:"correct_index,omitempty"`
	Explanation  string `json:"explanation"`
}

// Provenance records where a question came from and how.
type Provenance struct {
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	LatencyMs        int64    `json:"latency_ms"`
	UsedFallback     bool     `json:"used_fallback"`
	ContextItemsUsed int      `json:"context_items_used"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Question is the canonical output unit. Invariant: CorrectIndex indexes
// into Options and Options[CorrectIndex] equals CorrectAnswer under
// case- and whitespace-insensitive comparison. Questions are never
// mutated after leaving the normalizer.
type Question struct {
	ID            string     `json:"id"`
	Type          Type       `json:"type"`
	Difficulty    Difficulty `json:"difficulty"`
	Text          string     `json:"question_text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	CorrectIndex  int        `json:"correct_index"`
	Explanation   string     `json:"explanation"`
	Provenance    Provenance `json:"provenance"`
}

// Raw converts a normalized Question back to the raw shape. Normalizing
// the result reproduces the Question unchanged; tests rely on this to
// check normalization idempotence.
func (q Question) Raw() RawQuestion {
	idx := q.CorrectIndex
	return RawQuestion{
		ID:            q.ID,
		Type:          string(q.Type),
		Difficulty:    string(q.Difficulty),
		QuestionText:  q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		CorrectIndex:  &idx,
		Explanation:   q.Explanation,
	}
}

// Scope is the (room, session, transcript/segment) tuple that history
// retrieval and persistence are partitioned by.
type Scope struct {
	RoomID       string `json:"room_id"`
	SessionID    string `json:"session_id"`
	TranscriptID string `json:"transcript_id,omitempty"`
	SegmentID    string `json:"segment_id,omitempty"`
}

// Source categories for persisted question history. Segment-origin and
// timer-origin batches land in separate categories but are pooled when
// retrieving dedup context.
const (
	CategorySegment  = "segment"
	CategoryTimer    = "timer"
	CategoryHolistic = "holistic"
)
