// Package text holds the pure string primitives shared by every matcher:
// normalization and edit distance. Both operate on plain ASCII because the
// catalogs store transliterated terms.
package text

import "strings"

// Normalize lower-cases s and strips every rune that is not an ASCII letter,
// digit, or space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize splits normalized text into terms.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// Levenshtein returns the minimum number of single-character insertions,
// deletions, and substitutions needed to turn a into b. Single-row DP,
// O(len(a)*len(b)) time, O(min) space.
func Levenshtein(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
