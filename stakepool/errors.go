package stakepool

import "errors"

var (
	// ErrUnauthorized indicates the caller is not the reward distribution
	// (admin) address.
	ErrUnauthorized = errors.New("stakepool: caller is not reward distribution")

	// ErrInvalidTreasury indicates a zero treasury address.
	ErrInvalidTreasury = errors.New("stakepool: invalid treasury address")

	// ErrInvalidToken indicates a zero token contract address.
	ErrInvalidToken = errors.New("stakepool: token must be non-zero")

	// ErrInsufficientAllowance indicates the caller has not approved
	// enough of the staking token for the requested deposit.
	ErrInsufficientAllowance = errors.New("stakepool: insufficient staking token allowance")
)
