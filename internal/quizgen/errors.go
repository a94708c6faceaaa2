package quizgen

import (
	"fmt"
	"strings"
)

// ErrSourceTooShort rejects generation before any provider is called.
type ErrSourceTooShort struct {
	Length int
	Min    int
}

func (e *ErrSourceTooShort) Error() string {
	return fmt.Sprintf("source text too short: %d characters, minimum %d", e.Length, e.Min)
}

// ProviderFailure records one failed attempt in a fallback chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AggregatedProviderFailure is returned when every provider in the
// fallback chain has been exhausted. It lists one failure per attempted
// provider, in chain order, so operators can read the whole outage
// pattern instead of only the last error.
type AggregatedProviderFailure struct {
	Attempts []ProviderFailure
}

func (e *AggregatedProviderFailure) Error() string {
	var b strings.Builder
	b.WriteString("all providers failed:")
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " [%s: %v]", a.Provider, a.Err)
	}
	return b.String()
}
