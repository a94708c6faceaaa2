package quizgen

import "strings"

// questionCount derives the target question count for a request. The
// step function is monotonic in source length (one extra question per
// WordsPerQuestion words) and clamped to [1, max], where max depends on
// the mode. The cap is deliberate quality control: count never grows
// past the ceiling regardless of how much content is available.
func questionCount(req Request, cfg Config) int {
	max := cfg.MaxSegmentQuestions
	if req.Holistic {
		max = cfg.MaxHolisticQuestions
	}
	if max <= 0 {
		defaults := DefaultConfig()
		max = defaults.MaxSegmentQuestions
		if req.Holistic {
			max = defaults.MaxHolisticQuestions
		}
	}

	if req.RequestedCount > 0 {
		return clamp(req.RequestedCount, 1, max)
	}

	// A zero-value Config must still produce a usable count.
	per := cfg.WordsPerQuestion
	if per <= 0 {
		per = DefaultConfig().WordsPerQuestion
	}

	words := len(strings.Fields(req.SourceText))
	derived := 1 + words/per
	return clamp(derived, 1, max)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
