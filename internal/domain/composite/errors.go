package composite

import "errors"

// Sentinel kinds for scheme configuration errors.
var (
	ErrInvalidScheme = errors.New("invalid weighting scheme")
)
