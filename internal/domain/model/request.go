// Package model contains domain records passed between layers.
package model

import "time"

// Request is an e-book request submitted by a caller. The title may be
// malformed (author embedded in it); preprocessing happens downstream and
// never mutates the original.
type Request struct {
	ID        string // unique id for tracking and in-flight deduplication
	Title     string
	Author    string
	Requester string // informational; who asked for the book
	TS        time.Time
}

// Status is the terminal state of a resolution.
type Status string

// Terminal request states.
const (
	StatusResolved Status = "resolved"
	StatusNotFound Status = "not-found"
	StatusError    Status = "error"
)

// FailureReason is the typed cause attached to a non-resolved outcome.
type FailureReason string

// Failure reasons surfaced after all fallbacks are exhausted.
const (
	FailureAuthorNotFound FailureReason = "author-not-found"
	FailureBookNotFound   FailureReason = "book-not-found"
	FailureAddFailed      FailureReason = "add-failed"
)

// Outcome is the final result of resolving one request: the chosen author
// and book records, or an explicit not-found/error with a typed reason.
type Outcome struct {
	RequestID string
	Title     string
	Author    string
	Status    Status
	Reason    FailureReason // empty when Status is resolved

	AuthorID   int64
	AuthorName string
	BookID     int64
	BookTitle  string

	// AuthorCreated and BookAdded record whether the resolution had to
	// create the records in the acquisition backend.
	AuthorCreated bool
	BookAdded     bool

	// Warnings carries non-fatal signals: ambiguous matches, a failed
	// search trigger. The outcome is still a success when these are set.
	Warnings []string

	CompletedAt time.Time
}

// Warn appends a non-fatal signal to the outcome.
func (o *Outcome) Warn(msg string) {
	o.Warnings = append(o.Warnings, msg)
}
