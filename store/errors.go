package store

import "errors"

var (
	// ErrNoState indicates no contract state snapshot has been saved yet.
	ErrNoState = errors.New("store: no saved state")

	// ErrRoundNotFound indicates the referenced round does not exist, or
	// no incomplete round is pending.
	ErrRoundNotFound = errors.New("store: round not found")

	// ErrInvalidLeg indicates a leg index outside the round's member list.
	ErrInvalidLeg = errors.New("store: invalid payout leg")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("store: nil parameter")
)
