package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrUnknownSpread = errors.New("unknown spread convention")
)
