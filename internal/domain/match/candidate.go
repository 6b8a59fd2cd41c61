// Package match scores catalog lookup results against a requested author or
// book and selects at most one confident winner per call.
//
// Conventions:
// - Scoring is an ordered list of independent rules. Each rule is a pure
//   function of (target, candidate) returning a delta and a human-readable
//   reason; the total is the fold of all deltas, so rule order only affects
//   the reason trail, never the score.
// - Best* functions return nil for "no confident match". Callers apply
//   their own fallback; absence of a match is not an error here.
package match

import "time"

// Candidate is one record from a catalog lookup, author or book. It is
// immutable for the lifetime of a matching call.
type Candidate struct {
	// ID is the acquisition backend's record id. Zero means the candidate
	// only exists in the upstream catalog and has not been added yet.
	ID int64

	// ForeignID is the stable upstream catalog identifier.
	ForeignID string

	// Name is the display name (authors) or title (books).
	Name string

	// Author is the owning author's display name; set on book candidates.
	Author string

	// AuthorID and AuthorForeignID link a book candidate to its author
	// record when the lookup carried one.
	AuthorID        int64
	AuthorForeignID string

	Rating      float64
	BookCount   int
	Overview    string
	Genres      []string
	SeriesTitle string

	// ReleaseDate is zero when the catalog did not report one.
	ReleaseDate time.Time
}

// Scored pairs a candidate with its accumulated score and the trail of rule
// contributions that produced it. Produced fresh per call, never persisted.
type Scored struct {
	Candidate Candidate
	Score     int
	Reasons   []string

	// TitleSim is the title similarity backing a book score; zero for
	// author candidates.
	TitleSim float64

	// Ambiguous marks a winner whose margin over the runner-up was under
	// the confidence margin. Informational only; it never blocks selection.
	Ambiguous bool
}
