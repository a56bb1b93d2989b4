// Package match scores free-text names against reference entities and
// decides whether the best candidate is usable.
package match

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Lexical returns the fraction of whitespace-delimited query tokens that
// also appear as whole tokens in name, both lower-cased. It is not
// symmetric: extra words in name cost nothing, so multi-word institute names
// match regardless of word order or suffixes. An empty query scores 0.
func Lexical(query, name string) float64 {
	qTokens := tokens(query)
	if len(qTokens) == 0 {
		return 0
	}
	nameSet := make(map[string]struct{})
	for _, t := range tokens(name) {
		nameSet[t] = struct{}{}
	}

	matches := 0
	for _, t := range qTokens {
		if _, ok := nameSet[t]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(qTokens))
}

func tokens(s string) []string {
	return strings.Fields(strings.ToLower(norm.NFC.String(s)))
}
