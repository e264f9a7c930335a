package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrAnalyze    = errors.New("analysis failed")
)

// wrap prefixes err with the handler operation name.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// wrapKind attaches a sentinel kind to an upstream error.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
