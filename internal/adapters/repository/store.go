// Package repository defines the outcome store interface and its in-memory
// implementation. Outcomes are the system of record for "what happened to
// my request"; persistence beyond process lifetime is a caller concern.
package repository

import (
	"context"

	"github.com/foliolabs/folio/internal/domain/model"
)

// Store provides read/write access to resolution outcomes.
type Store interface {
	// Record stores the outcome for a request, replacing any previous one.
	Record(ctx context.Context, outcome model.Outcome) error

	// Get returns the outcome for a request id.
	// Returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, requestID string) (model.Outcome, error)

	// Recent returns up to n outcomes, newest first.
	Recent(ctx context.Context, n int) ([]model.Outcome, error)

	// Count returns the number of stored outcomes.
	Count(ctx context.Context) int
}
