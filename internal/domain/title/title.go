// Package title holds the title-specific heuristics: core-title extraction
// and a similarity measure tolerant of subtitles, reordering and partial
// containment.
package title

import (
	"regexp"
	"strings"

	"github.com/foliolabs/folio/internal/domain/text"
)

// minOverlapWordLen is the shortest word (exclusive) that counts toward the
// word-overlap numerator. Short filler words still widen the denominator.
const minOverlapWordLen = 2

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Core strips series and subtitle decoration: everything from the first ':'
// or '(' onward is dropped. "Dune: Book One" -> "Dune".
func Core(s string) string {
	if i := strings.IndexAny(s, ":("); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// normalize lowercases, removes non word characters and collapses
// whitespace. Distinct from text.Normalize, which only strips periods.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity compares two titles and returns the best of three independent
// measures in [0,1]: plain edit-distance similarity, containment, and word
// overlap. Any single measure alone is too brittle for catalog data; the
// union survives subtitle noise, word reordering and partial containment.
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)

	best := text.Similarity(na, nb)
	if c := containment(na, nb); c > best {
		best = c
	}
	if w := wordOverlap(na, nb); w > best {
		best = w
	}
	return best
}

// containment scores substring containment as len(shorter)/len(longer),
// zero when neither normalized title contains the other.
func containment(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return 0
	}
	return float64(len(shorter)) / float64(len(longer))
}

// wordOverlap counts words longer than minOverlapWordLen present in both
// titles against the full word union of both. The denominator keeps short
// words so "of"/"the" still dilute the ratio.
func wordOverlap(a, b string) float64 {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	union := make(map[string]struct{}, len(wa)+len(wb))
	other := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		union[w] = struct{}{}
		other[w] = struct{}{}
	}

	shared := 0
	for _, w := range wa {
		if _, dup := union[w]; dup {
			if _, ok := other[w]; ok && len(w) > minOverlapWordLen {
				shared++
				delete(other, w) // count each shared word once
			}
			continue
		}
		union[w] = struct{}{}
	}

	return float64(shared) / float64(len(union))
}
