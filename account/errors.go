package account

import "errors"

var (
	// ErrInvalidAddress indicates a malformed or wrongly sized address.
	ErrInvalidAddress = errors.New("account: invalid address")

	// ErrBadChecksum indicates the address checksum byte does not match.
	ErrBadChecksum = errors.New("account: bad address checksum")
)
