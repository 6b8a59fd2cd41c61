package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrAlreadyStarted   = errors.New("service already started")
	ErrNoCatalog        = errors.New("no catalog client configured")
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrDuplicateRequest = errors.New("request already in flight")
	ErrQueueFull        = errors.New("request queue is full")
)
