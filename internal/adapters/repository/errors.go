package repository

import "errors"

// Sentinel kinds for outcome store errors.
var (
	ErrNotFound     = errors.New("request not found")
	ErrInvalidLimit = errors.New("invalid recent limit")
)
