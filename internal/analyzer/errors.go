package analyzer

import "errors"

var (
	// ErrInvalidSuppression indicates a suppression whose artifact or version constraint cannot be used.
	ErrInvalidSuppression = errors.New("invalid finding suppression")

	// ErrInvalidFinding indicates a finding with a negative count.
	ErrInvalidFinding = errors.New("invalid finding")
)
