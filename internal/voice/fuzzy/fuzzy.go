// Package fuzzy provides the normalized string-similarity ratio shared by
// wake-word detection and command matching.
//
// The ratio is a Levenshtein-based similarity in [0, 1]: identical strings
// score 1, strings with no characters in common score 0. Both operands are
// lower-cased before comparison, making the metric case-insensitive and
// symmetric. All matching thresholds in the voice pipeline (wake-word 0.85,
// history fast path 0.9, trigger scan 0.7) are expressed against this ratio.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Ratio returns the normalized similarity between a and b in [0, 1].
// Comparison is case-insensitive; empty strings only match each other.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}

// BestTokenRatio returns the highest Ratio between phrase and any
// whitespace-delimited token of text. Used by wake-word matching, where the
// activation phrase may appear anywhere in a longer transcript.
func BestTokenRatio(phrase, text string) float64 {
	var best float64
	for _, token := range strings.Fields(text) {
		if r := Ratio(phrase, token); r > best {
			best = r
		}
	}
	return best
}
