package registry

import "errors"

var (
	// ErrAlreadyInitialized indicates Init was called more than once.
	ErrAlreadyInitialized = errors.New("registry: already initialized")

	// ErrAlreadyMember indicates the account is already an active member.
	ErrAlreadyMember = errors.New("registry: already a member")

	// ErrNotMember indicates the account is not an active member.
	ErrNotMember = errors.New("registry: not a member")

	// ErrTooManyMembers indicates the member list exceeds the codec limit.
	ErrTooManyMembers = errors.New("registry: too many members")

	// ErrInvalidData indicates serialized registry data is malformed.
	ErrInvalidData = errors.New("registry: invalid registry data")
)
