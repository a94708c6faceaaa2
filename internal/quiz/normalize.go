package quiz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	minQuestionLen = 10
	maxQuestionLen = 1000
)

// trueFalseOptions is the canonical option pair assigned when a
// true/false question arrives without options.
var trueFalseOptions = []string{"True", "False"}

// SchemaViolation names the field of a raw question that failed
// validation. The offending question is dropped from its batch; the
// batch itself continues.
type SchemaViolation struct {
	Field   string
	Message string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation on %q: %s", e.Field, e.Message)
}

// Normalize enforces the output schema on a raw provider question and
// produces the canonical Question. It is the single funnel every
// provider path goes through before results leave the core.
//
// Normalization is idempotent: feeding a normalized question back in
// (via Question.Raw) yields an identical result.
func Normalize(raw RawQuestion, prov Provenance) (Question, error) {
	q := Question{
		ID:            strings.TrimSpace(raw.ID),
		Type:          Type(strings.TrimSpace(strings.ToLower(raw.Type))),
		Difficulty:    Difficulty(strings.TrimSpace(strings.ToLower(raw.Difficulty))),
		Text:          strings.TrimSpace(raw.QuestionText),
		CorrectAnswer: strings.TrimSpace(raw.CorrectAnswer),
		Explanation:   strings.TrimSpace(raw.Explanation),
		Provenance:    prov,
	}

	if !q.Type.Valid() {
		return Question{}, &SchemaViolation{Field: "type", Message: fmt.Sprintf("unknown question type %q", raw.Type)}
	}
	if !q.Difficulty.Valid() {
		return Question{}, &SchemaViolation{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", raw.Difficulty)}
	}
	if q.Text == "" {
		return Question{}, &SchemaViolation{Field: "question_text", Message: "empty"}
	}
	if len(q.Text) < minQuestionLen || len(q.Text) > maxQuestionLen {
		return Question{}, &SchemaViolation{
			Field:   "question_text",
			Message: fmt.Sprintf("length %d outside bounds [%d, %d]", len(q.Text), minQuestionLen, maxQuestionLen),
		}
	}
	if q.Explanation == "" {
		return Question{}, &SchemaViolation{Field: "explanation", Message: "empty"}
	}
	if q.CorrectAnswer == "" {
		return Question{}, &SchemaViolation{Field: "correct_answer", Message: "empty"}
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	options := make([]string, 0, len(raw.Options))
	for _, o := range raw.Options {
		options = append(options, strings.TrimSpace(o))
	}
	if q.Type == TypeTrueFalse && len(options) == 0 {
		options = append(options, trueFalseOptions...)
	}
	if len(options) != q.Type.OptionCount() {
		return Question{}, &SchemaViolation{
			Field:   "options",
			Message: fmt.Sprintf("%s requires exactly %d options, got %d", q.Type, q.Type.OptionCount(), len(options)),
		}
	}
	for i, o := range options {
		if o == "" {
			return Question{}, &SchemaViolation{Field: "options", Message: fmt.Sprintf("option %d is empty", i)}
		}
	}
	q.Options = options

	idx, warning, err := resolveCorrectIndex(q.Type, options, q.CorrectAnswer, raw.CorrectIndex)
	if err != nil {
		return Question{}, err
	}
	q.CorrectIndex = idx
	if warning != "" {
		q.Provenance.Warnings = appendWarning(q.Provenance.Warnings, warning)
	}

	// Canonicalize the answer text to the option it points at so the
	// index/text invariant holds exactly, not just case-insensitively.
	q.CorrectAnswer = options[idx]

	return q, nil
}

// NormalizeBatch normalizes each raw question, dropping individual
// violations rather than failing the batch. Dropped reasons are returned
// alongside the surviving questions for logging.
func NormalizeBatch(raws []RawQuestion, prov Provenance) ([]Question, []error) {
	questions := make([]Question, 0, len(raws))
	var dropped []error

	for i, raw := range raws {
		q, err := Normalize(raw, prov)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("question %d: %w", i, err))
			continue
		}
		questions = append(questions, q)
	}

	return questions, dropped
}

// resolveCorrectIndex determines the correct option index, deriving it
// from the answer text when the provider did not supply one.
func resolveCorrectIndex(t Type, options []string, answer string, supplied *int) (int, string, error) {
	if supplied != nil {
		idx := *supplied
		if idx < 0 || idx >= len(options) {
			return 0, "", &SchemaViolation{
				Field:   "correct_index",
				Message: fmt.Sprintf("index %d out of range [0, %d]", idx, len(options)-1),
			}
		}
		if canonical(options[idx]) != canonical(answer) {
			return 0, "", &SchemaViolation{
				Field:   "correct_index",
				Message: fmt.Sprintf("option at index %d does not match correct_answer", idx),
			}
		}
		return idx, "", nil
	}

	norm := canonical(answer)

	if t == TypeTrueFalse {
		switch norm {
		case "true", "1", "a":
			return 0, "", nil
		case "false", "0", "b":
			return 1, "", nil
		}
		// Match against the actual option texts before giving up.
		if idx, ok := uniqueMatch(options, norm); ok {
			return idx, "", nil
		}
		// An ambiguous boolean should not void an otherwise good batch:
		// default to index 0 and record the call in provenance.
		return 0, fmt.Sprintf("ambiguous true/false answer %q defaulted to index 0", answer), nil
	}

	matches := matchingIndexes(options, norm)
	switch len(matches) {
	case 0:
		return 0, "", &SchemaViolation{
			Field:   "correct_answer",
			Message: "answer text ambiguous: matches no option",
		}
	case 1:
		return matches[0], "", nil
	default:
		// Multiple exact matches after normalization is a generation
		// defect to report, not to silently resolve to the first hit.
		return 0, "", &SchemaViolation{
			Field:   "correct_answer",
			Message: "answer text ambiguous: matches multiple options",
		}
	}
}

func matchingIndexes(options []string, norm string) []int {
	var matches []int
	for i, o := range options {
		if canonical(o) == norm {
			matches = append(matches, i)
		}
	}
	return matches
}

func uniqueMatch(options []string, norm string) (int, bool) {
	matches := matchingIndexes(options, norm)
	if len(matches) == 1 {
		return matches[0], true
	}
	return 0, false
}

// canonical lowercases and collapses whitespace for answer comparison.
func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func appendWarning(warnings []string, w string) []string {
	for _, existing := range warnings {
		if existing == w {
			return warnings
		}
	}
	return append(warnings, w)
}
