package guard

import "errors"

var (
	// ErrAlreadyLocked indicates a reentrant call into a guarded operation.
	ErrAlreadyLocked = errors.New("guard: already entered")

	// ErrNotLocked indicates an exit without a matching enter.
	ErrNotLocked = errors.New("guard: not entered")
)
