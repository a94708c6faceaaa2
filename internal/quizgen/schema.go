package quizgen

import "github.com/lectio/pollgen/internal/llm"

// BatchSchema defines the JSON schema for question-generation replies.
// Providers with native structured output enforce it server-side; the
// local-model path skips it and relies on free-text extraction instead.
var BatchSchema = &llm.Schema{
	Name:        "quiz-batch",
	Description: "A batch of quiz questions generated from a lecture transcript, with a one-sentence summary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One-sentence summary of the transcript block",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"multiple_choice", "true_false"},
							"description": "Question type",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"easy", "medium", "hard"},
							"description": "Difficulty level",
						},
						"question_text": map[string]any{
							"type":        "string",
							"description": "The question shown to students, self-contained and answerable from the transcript",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options for multiple_choice, exactly 2 for true_false",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "The text of the correct option",
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"description": "Zero-based index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is correct, grounded in the transcript",
						},
					},
					"required": []any{"type", "difficulty", "question_text", "options", "correct_answer", "explanation"},
				},
			},
		},
		"required":             []any{"summary", "questions"},
		"additionalProperties": false,
	},
}
