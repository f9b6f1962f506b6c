package indicator

import "errors"

// Sentinel kinds for formula validation errors.
var (
	ErrInvalidFormula = errors.New("invalid indicator formula")
)
