package publish

import "errors"

// Sentinel kinds for publisher errors.
var (
	ErrConnect = errors.New("mqtt connect failed")
	ErrPublish = errors.New("mqtt publish failed")
	ErrTimeout = errors.New("mqtt operation timed out")
)
