package entity

import "errors"

// Domain error kinds. Callers branch with errors.Is; detail text is attached
// at the point of failure with fmt.Errorf("%w: ...").
var (
	ErrInvalidState      = errors.New("invalid state for this operation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("record was updated by another session")
)
