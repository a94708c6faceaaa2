package quizgen

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the orchestration knobs.
type Config struct {
	// MinSourceChars is the floor below which generation is refused.
	MinSourceChars int

	// MaxSegmentQuestions caps the derived count for segment-mode
	// generation. The cap is a quality decision: more than a handful of
	// questions per transcript block reads as noise in a live room.
	MaxSegmentQuestions int

	// MaxHolisticQuestions caps whole-session generation.
	MaxHolisticQuestions int

	// WordsPerQuestion drives the count step function: one additional
	// question per this many words of transcript.
	WordsPerQuestion int

	// DefaultTopK is the context-retrieval depth when a request does
	// not pin one.
	DefaultTopK int

	// FallbackChain is the default provider order.
	FallbackChain []string

	// MaxTokens bounds each provider reply.
	MaxTokens int

	// Temperature for question generation.
	Temperature float64
}

// DefaultConfig returns the standard orchestration configuration.
func DefaultConfig() Config {
	return Config{
		MinSourceChars:       50,
		MaxSegmentQuestions:  5,
		MaxHolisticQuestions: 8,
		WordsPerQuestion:     100,
		DefaultTopK:          5,
		FallbackChain:        []string{"anthropic", "groq", "ollama"},
		MaxTokens:            4096,
		Temperature:          0.7,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := envInt("POLLGEN_MIN_SOURCE_CHARS"); v > 0 {
		cfg.MinSourceChars = v
	}
	if v := envInt("POLLGEN_MAX_SEGMENT_QUESTIONS"); v > 0 {
		cfg.MaxSegmentQuestions = v
	}
	if v := envInt("POLLGEN_MAX_HOLISTIC_QUESTIONS"); v > 0 {
		cfg.MaxHolisticQuestions = v
	}
	if v := envInt("POLLGEN_CONTEXT_TOP_K"); v > 0 {
		cfg.DefaultTopK = v
	}
	if chain := os.Getenv("POLLGEN_FALLBACK_CHAIN"); chain != "" {
		var names []string
		for _, n := range strings.Split(chain, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			cfg.FallbackChain = names
		}
	}

	return cfg
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
