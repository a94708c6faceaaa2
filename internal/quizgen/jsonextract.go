package quizgen

import (
	"fmt"
	"strings"
)

// extractJSON pulls the first complete JSON array or object out of a
// free-text model reply. Local models wrap JSON in prose and markdown
// code fences, so the text is defenced first, then scanned with bracket
// matching that respects string literals and escapes.
func extractJSON(text string) (string, error) {
	text = stripCodeFences(text)

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", fmt.Errorf("no JSON value found in reply")
	}

	open := text[start]
	var close byte = ']'
	if open == '{' {
		close = '}'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON: %q opened at offset %d never closed", open, start)
}

// stripCodeFences removes markdown code-fence wrappers (```json ... ```).
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line (``` or ```json).
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		return strings.TrimPrefix(text, "```")
	}

	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// excerpt truncates raw reply text for error messages.
func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
