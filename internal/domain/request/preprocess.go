// Package request repairs ambiguous "Title by Author" inputs before they
// reach the matchers. Callers get a corrected copy; inputs are never
// mutated.
package request

import "strings"

// maxSubjectWords is the longest leading segment still treated as a
// biography subject when the trailing "by" name differs from the supplied
// author.
const maxSubjectWords = 4

// biographyHints in a title tip the balance toward reading "<X> by <Y>" as
// a biography of X written by Y.
var biographyHints = []string{"biography", "life", "lives", "study of"}

// Preprocess detects the "<X> by <Y>" pattern inside a requested title and
// repairs the pair:
//
//   - If Y is just the supplied author repeated, the suffix is redundant
//     and is stripped from the title.
//   - Otherwise, when X is short or the title hints at a biography, Y is
//     taken as the actual author (the biographer) and the title is kept.
//
// Titles that start with "by " and titles without the pattern pass through
// untouched.
func Preprocess(title, author string) (string, string) {
	trimmed := strings.TrimSpace(title)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(lower, "by ") {
		return title, author
	}

	idx := lastIndexByFold(trimmed)
	if idx < 0 {
		return title, author
	}

	leading := strings.TrimSpace(trimmed[:idx])
	trailing := strings.TrimSpace(trimmed[idx+len(" by "):])
	if leading == "" || trailing == "" {
		return title, author
	}

	// "<Title> by <the same author>": the suffix carries no information.
	if strings.EqualFold(trailing, strings.TrimSpace(author)) {
		return leading, author
	}

	// A short subject, or an explicit biography hint, reads as "<subject>
	// by <biographer>"; the trailing name is the author we actually want.
	if len(strings.Fields(leading)) <= maxSubjectWords || containsHint(lower) {
		return title, trailing
	}

	return title, author
}

// lastIndexByFold finds the last case-insensitive " by " in s. The needle
// is ASCII, so a match only ever covers ASCII bytes and the offset is
// valid in s itself. Indexing a lowercased copy is not safe here: runes
// like U+0130 change byte width when lowercased and shift every offset
// after them.
func lastIndexByFold(s string) int {
	for i := len(s) - len(" by "); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(" by ")], " by ") {
			return i
		}
	}
	return -1
}

func containsHint(lowerTitle string) bool {
	for _, h := range biographyHints {
		if strings.Contains(lowerTitle, h) {
			return true
		}
	}
	return false
}
