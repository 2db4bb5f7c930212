package distribute

import "errors"

var (
	// ErrNoShareholders indicates an attempt to split across an empty registry.
	ErrNoShareholders = errors.New("distribute: no shareholders")

	// ErrInvalidPool indicates a nil or negative pool balance.
	ErrInvalidPool = errors.New("distribute: invalid pool balance")
)
