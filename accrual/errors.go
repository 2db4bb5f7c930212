package accrual

import "errors"

var (
	// ErrInvalidAmount indicates a nil, zero or negative amount where a
	// positive one is required.
	ErrInvalidAmount = errors.New("accrual: invalid amount")

	// ErrInsufficientStake indicates a withdrawal larger than the balance.
	ErrInsufficientStake = errors.New("accrual: insufficient stake")

	// ErrInvalidDuration indicates a non-positive reward period duration.
	ErrInvalidDuration = errors.New("accrual: invalid reward duration")
)
