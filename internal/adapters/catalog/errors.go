package catalog

import "errors"

// Sentinel kinds for catalog errors. These allow errors.Is/As from callers.
var (
	ErrRequestFailed     = errors.New("catalog request failed")
	ErrUnexpectedStatus  = errors.New("catalog returned unexpected status")
	ErrDecodeFailed      = errors.New("catalog response decode failed")
	ErrNoQualityProfile  = errors.New("no quality profile configured in the backend")
	ErrNoMetadataProfile = errors.New("no metadata profile configured in the backend")
	ErrNoRootFolder      = errors.New("no root folder configured in the backend")
)
