package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrEmptyTrial     = errors.New("trial has no frames")
	ErrUnknownOutcome = errors.New("unknown outcome")
	ErrMissingTrialID = errors.New("trial id is empty")
	ErrDuplicateTrial = errors.New("duplicate trial id")
)
