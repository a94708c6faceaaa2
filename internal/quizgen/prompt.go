package quizgen

import (
	"fmt"
	"strings"

	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/quiz"
)

const systemPrompt = `You are a teaching assistant writing live quiz questions from a classroom lecture transcript.

Rules:
- Generate exactly the requested number of questions, no more, no fewer.
- Every question must be answerable from the transcript alone. Do not test outside knowledge.
- Write for students who just heard this material: clear, specific, one concept per question.
- multiple_choice questions have exactly 4 options with exactly one correct answer. Distractors should be plausible misreadings of the transcript, not obviously wrong.
- true_false questions have exactly 2 options: "True" and "False".
- The correct_answer field must repeat the exact text of the correct option.
- The explanation must cite what the speaker said, briefly.
- Also produce a one-sentence summary of the transcript block.
- If a list of prior questions is given, do not duplicate or closely paraphrase any of them.
- Respond with a single JSON object and nothing else.`

// buildUserMessage assembles the generation prompt for one attempt.
// Context items, when present, become an "avoid duplicating" block.
func buildUserMessage(req Request, count int, items []history.ContextItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", count)
	fmt.Fprintf(&b, "Allowed types: %s\n", typeList(req.AllowedTypes))
	fmt.Fprintf(&b, "Allowed difficulties: %s\n", difficultyList(req.AllowedDifficulties))

	if len(items) > 0 {
		b.WriteString("\nAvoid duplicating these prior questions:\n")
		for i, item := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Text)
		}
	}

	b.WriteString("\nTranscript:\n")
	b.WriteString(strings.TrimSpace(req.SourceText))

	return b.String()
}

func typeList(types []quiz.Type) string {
	if len(types) == 0 {
		return "multiple_choice, true_false"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func difficultyList(diffs []quiz.Difficulty) string {
	if len(diffs) == 0 {
		return "easy, medium, hard"
	}
	names := make([]string, len(diffs))
	for i, d := range diffs {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
