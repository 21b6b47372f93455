// Package matching provides the string similarity scores used by the
// property resolver. Scores are integers on a 0-100 scale so they compare
// directly against configured thresholds.
package matching

import (
	"sort"
	"strings"
)

// Ratio returns the Levenshtein similarity between two strings on a 0-100
// scale. 100 means equal, 0 means nothing in common.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := max(len(a), len(b))
	dist := levenshteinDistance(a, b)
	return int(float64(maxLen-dist) / float64(maxLen) * 100)
}

// TokenSortRatio sorts the whitespace-separated tokens of both strings
// before comparing, so word order does not affect the score. Useful for
// owner names recorded as "SMITH JOHN" in one feed and "JOHN SMITH" in
// another.
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// levenshteinDistance is the classic two-row dynamic program over bytes.
// Keys are normalized to ASCII before they reach here.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}
