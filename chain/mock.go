package chain

import (
	"math/big"

	"github.com/nulsoracles/librevdist-go/account"
)

// MockTransferor is a test double for Transferor.
// All function fields must be set before the corresponding method is called.
type MockTransferor struct {
	BalanceFn  func() (*big.Int, error)
	TransferFn func(to account.Address, amount *big.Int) error
}

// Compile-time interface check.
var _ Transferor = (*MockTransferor)(nil)

func (m *MockTransferor) Balance() (*big.Int, error) {
	return m.BalanceFn()
}

func (m *MockTransferor) Transfer(to account.Address, amount *big.Int) error {
	return m.TransferFn(to, amount)
}

// MockTokenCaller is a test double for TokenCaller.
type MockTokenCaller struct {
	BalanceOfFn    func(token, holder account.Address) (*big.Int, error)
	TransferFn     func(token, to account.Address, amount *big.Int) (bool, error)
	TransferFromFn func(token, from, to account.Address, amount *big.Int) (bool, error)
	AllowanceFn    func(token, owner, spender account.Address) (*big.Int, error)
}

// Compile-time interface check.
var _ TokenCaller = (*MockTokenCaller)(nil)

func (m *MockTokenCaller) BalanceOf(token, holder account.Address) (*big.Int, error) {
	return m.BalanceOfFn(token, holder)
}

func (m *MockTokenCaller) Transfer(token, to account.Address, amount *big.Int) (bool, error) {
	return m.TransferFn(token, to, amount)
}

func (m *MockTokenCaller) TransferFrom(token, from, to account.Address, amount *big.Int) (bool, error) {
	return m.TransferFromFn(token, from, to, amount)
}

func (m *MockTokenCaller) Allowance(token, owner, spender account.Address) (*big.Int, error) {
	return m.AllowanceFn(token, owner, spender)
}
