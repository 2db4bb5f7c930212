package chain

import (
	"math/big"

	"github.com/nulsoracles/librevdist-go/account"
)

// Transferor moves native coin on behalf of a contract instance.
// Implementations are owned by the host environment.
type Transferor interface {
	// Balance returns the contract's own native-coin balance.
	Balance() (*big.Int, error)

	// Transfer sends amount of native coin to the given account.
	// A transfer failure is fatal to the enclosing operation.
	Transfer(to account.Address, amount *big.Int) error
}

// TokenCaller proxies calls into external token contracts. Calls are
// opaque RPC-style invocations; any failure surfaces as ErrTransferFailed
// at the engine level.
type TokenCaller interface {
	// BalanceOf returns holder's balance on the token contract.
	BalanceOf(token, holder account.Address) (*big.Int, error)

	// Transfer moves amount from the calling contract to the recipient.
	// The boolean is the token contract's own success flag.
	Transfer(token, to account.Address, amount *big.Int) (bool, error)

	// TransferFrom moves amount from one holder to another using a
	// prior allowance.
	TransferFrom(token, from, to account.Address, amount *big.Int) (bool, error)

	// Allowance returns how much spender may move out of owner's balance.
	Allowance(token, owner, spender account.Address) (*big.Int, error)
}

// EventSink receives events emitted by contract engines.
type EventSink interface {
	Emit(e Event)
}
