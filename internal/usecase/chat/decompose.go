package chat

import (
	"regexp"
	"strings"
)

// Fragments are split on sentence punctuation and the standalone word
// "and". Word boundaries keep words like "sandwich" intact.
var splitRe = regexp.MustCompile(`\s*(?:\band\b|[,.?;])\s*`)

// Decompose breaks a query into independently answerable subquestions.
// A query with no split points comes back as a single fragment.
func Decompose(query string) []string {
	parts := splitRe.Split(query, -1)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{query}
	}
	return out
}
