package tier

import "errors"

// Sentinel kinds for classifier configuration errors.
var (
	ErrInvalidClassifier = errors.New("invalid tier classifier")
)
