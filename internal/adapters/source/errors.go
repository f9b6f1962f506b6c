package source

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrMissingHeader = errors.New("unusable csv header")
)
