// Package text provides the normalization and edit-distance primitives the
// matching engine is built on.
//
// Conventions:
// - Functions are pure; no package state.
// - Similarity never normalizes its inputs. Callers pick the form they want
//   to compare (usually Normalize output) so the behavior stays explicit.
package text

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Normalize lowercases s, strips periods, collapses runs of whitespace to a
// single space and trims the ends. "J.R.R.  Tolkien " -> "jrr tolkien".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits a normalized string on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// Similarity returns a Levenshtein ratio in [0,1]. Two empty strings are
// identical (1.0); exactly one empty string is a total mismatch (0.0).
// The distance is the classic unit-cost edit distance over the full pair
// of strings, no truncation.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dist := edlib.LevenshteinDistance(a, b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}

	sim := 1.0 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0.0
	}
	return sim
}
