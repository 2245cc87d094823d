package knowledge

import (
	"fmt"
	"strings"
)

// NoContextSentinel stands in for an empty retrieval. Downstream prompts treat it as ordinary context.
const NoContextSentinel = "No relevant context found."

// FormatContext renders entries as numbered, scope-labelled blocks separated by a blank line.
func FormatContext(entries []Entry) string {
	if len(entries) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		scope := e.Scope
		if scope == "" {
			scope = "unknown"
		}
		parts = append(parts, fmt.Sprintf("--- Document %d (scope: %s) ---\n%s", i+1, scope, strings.Join(e.Sections, "\n")))
	}
	return strings.Join(parts, "\n\n")
}

// Entries strips the scores from a ranked result.
func Entries(scored []Scored) []Entry {
	out := make([]Entry, len(scored))
	for i, s := range scored {
		out[i] = s.Entry
	}
	return out
}
