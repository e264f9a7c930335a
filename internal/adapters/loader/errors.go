package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrNoTrials       = errors.New("no trial documents found")
)
