package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrEmptyStore = errors.New("observation store is empty")
)
