package chain

import "errors"

var (
	// ErrTransferFailed indicates a native or token value transfer failed.
	ErrTransferFailed = errors.New("chain: transfer failed")
)
