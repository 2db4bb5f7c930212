package profits

import "errors"

var (
	// ErrUnauthorized indicates the caller is not the reward distribution
	// (admin) address.
	ErrUnauthorized = errors.New("profits: caller is not reward distribution")

	// ErrAlreadyInitialized indicates the shareholder registry was
	// already populated.
	ErrAlreadyInitialized = errors.New("profits: already initialized")

	// ErrNotInitialized indicates the shareholder registry has not been
	// populated yet.
	ErrNotInitialized = errors.New("profits: not initialized")
)
