package testtrials

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrVerify        = errors.New("verification failed")
)
