package stakepool

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/nulsoracles/librevdist-go/account"
	"github.com/nulsoracles/librevdist-go/accrual"
	"github.com/nulsoracles/librevdist-go/chain"
	"github.com/nulsoracles/librevdist-go/config"
	"github.com/nulsoracles/librevdist-go/guard"
)

// Engine is the staking-rewards variant: stake deposits earn a share of a
// time-based reward stream proportional to balance, tracked by an accrual
// ledger. One engine models one contract instance. With a staking token
// configured, deposits are pulled from the caller over an allowance and
// withdrawals are returned on the token contract; with a zero token the
// stake is a pure ledger balance.
type Engine struct {
	mu sync.Mutex

	self     account.Address // the contract's own address, for token calls
	admin    account.Address
	treasury account.Address
	token    account.Address // staking token; zero means ledger-only stake
	guard    guard.Guard

	ledger          *accrual.Ledger
	allTimeClaimed  map[account.Address]*big.Int
	rewardsDuration int64

	xfer   chain.Transferor
	tokens chain.TokenCaller
	sink   chain.EventSink
}

// New creates a staking engine. tokens and sink may be nil when token
// calls and event emission are not needed; clock nil means real time.
func New(self, admin, treasury, token account.Address, xfer chain.Transferor, tokens chain.TokenCaller, sink chain.EventSink, clock clockwork.Clock, cfg config.Config) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{
		self:            self,
		admin:           admin,
		treasury:        treasury,
		token:           token,
		ledger:          accrual.New(clock),
		allTimeClaimed:  make(map[account.Address]*big.Int),
		rewardsDuration: cfg.RewardsDuration,
		xfer:            xfer,
		tokens:          tokens,
		sink:            sink,
	}, nil
}

// Stake deposits amount of stake for the caller. With a staking token the
// amount is pulled from the caller's approved allowance first.
func (e *Engine) Stake(caller account.Address, amount *big.Int) error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if amount == nil || amount.Sign() <= 0 {
			return accrual.ErrInvalidAmount
		}
		if err := e.pullStake(caller, amount); err != nil {
			return err
		}
		if err := e.ledger.Stake(caller, amount); err != nil {
			return err
		}
		e.emit(chain.Staked{Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// Withdraw removes amount of stake for the caller, returning it on the
// staking token when one is configured.
func (e *Engine) Withdraw(caller account.Address, amount *big.Int) error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		snap := e.ledger.Snapshot()
		if err := e.ledger.Withdraw(caller, amount); err != nil {
			return err
		}
		if err := e.returnStake(caller, amount); err != nil {
			e.ledger.Restore(snap)
			return err
		}
		e.emit(chain.Withdrawn{Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// Claim pays out the caller's accrued rewards in native coin. A failed
// transfer rolls the ledger back so nothing is forfeited.
func (e *Engine) Claim(caller account.Address) (*big.Int, error) {
	var claimed *big.Int
	err := e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		var err error
		claimed, err = e.claim(caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Exit withdraws the caller's entire stake and claims accrued rewards in
// one guarded call.
func (e *Engine) Exit(caller account.Address) (*big.Int, error) {
	var claimed *big.Int
	err := e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		snap := e.ledger.Snapshot()
		balance := e.ledger.BalanceOf(caller)
		if balance.Sign() > 0 {
			if err := e.ledger.Withdraw(caller, balance); err != nil {
				return err
			}
			if err := e.returnStake(caller, balance); err != nil {
				e.ledger.Restore(snap)
				return err
			}
		}
		var err error
		claimed, err = e.claim(caller)
		if err != nil {
			e.ledger.Restore(snap)
			return err
		}
		if balance.Sign() > 0 {
			e.emit(chain.Withdrawn{Account: caller, Amount: balance})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// claim moves banked rewards out to the caller. Callers hold the mutex.
func (e *Engine) claim(caller account.Address) (*big.Int, error) {
	snap := e.ledger.Snapshot()
	claimed := e.ledger.Claim(caller)
	if claimed.Sign() == 0 {
		return claimed, nil
	}
	if err := e.xfer.Transfer(caller, claimed); err != nil {
		e.ledger.Restore(snap)
		return nil, fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
	}
	e.creditClaimed(caller, claimed)
	e.emit(chain.RewardPaid{Account: caller, Amount: new(big.Int).Set(claimed)})
	return claimed, nil
}

// pullStake moves a deposit from the caller to the contract on the
// staking token, checking the approved allowance first. A zero token
// means the stake is ledger-only and nothing moves.
func (e *Engine) pullStake(from account.Address, amount *big.Int) error {
	if e.tokens == nil || e.token.IsZero() {
		return nil
	}
	allowed, err := e.tokens.Allowance(e.token, from, e.self)
	if err != nil {
		return fmt.Errorf("%w: allowance: %w", chain.ErrTransferFailed, err)
	}
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	ok, err := e.tokens.TransferFrom(e.token, from, e.self, amount)
	if err != nil {
		return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: token returned false", chain.ErrTransferFailed)
	}
	return nil
}

// returnStake sends withdrawn stake back to the caller on the staking
// token. A zero token means nothing moves.
func (e *Engine) returnStake(to account.Address, amount *big.Int) error {
	if e.tokens == nil || e.token.IsZero() {
		return nil
	}
	ok, err := e.tokens.Transfer(e.token, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: token returned false", chain.ErrTransferFailed)
	}
	return nil
}

// NotifyRewardAmount funds a new reward period with the configured
// duration. Admin-gated.
func (e *Engine) NotifyRewardAmount(caller account.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	if err := e.ledger.NotifyRewardAmount(amount, e.rewardsDuration); err != nil {
		return err
	}
	e.emit(chain.RewardAdded{Amount: new(big.Int).Set(amount)})
	return nil
}

// SetTreasury changes the treasury address. Admin-gated.
func (e *Engine) SetTreasury(caller, next account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	if next.IsZero() {
		return ErrInvalidTreasury
	}
	e.treasury = next
	return nil
}

// SetRewardDistribution hands admin rights to next. Only the current admin
// may do this.
func (e *Engine) SetRewardDistribution(caller, next account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	e.admin = next
	return nil
}

// RecoverNative sweeps the contract's full native balance to the admin.
func (e *Engine) RecoverNative(caller account.Address) error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if caller != e.admin {
			return ErrUnauthorized
		}
		bal, err := e.xfer.Balance()
		if err != nil {
			return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
		}
		if err := e.xfer.Transfer(e.admin, bal); err != nil {
			return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
		}
		return nil
	})
}

// RecoverToken sweeps the contract's full balance on an external token
// contract to the admin. Admin-gated.
func (e *Engine) RecoverToken(caller, token account.Address) error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if caller != e.admin {
			return ErrUnauthorized
		}
		if token.IsZero() {
			return ErrInvalidToken
		}
		bal, err := e.tokens.BalanceOf(token, e.self)
		if err != nil {
			return fmt.Errorf("%w: balanceOf: %w", chain.ErrTransferFailed, err)
		}
		ok, err := e.tokens.Transfer(token, e.admin, bal)
		if err != nil {
			return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
		}
		if !ok {
			return fmt.Errorf("%w: token returned false", chain.ErrTransferFailed)
		}
		return nil
	})
}

// Admin returns the current admin address.
func (e *Engine) Admin() account.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.admin
}

// Treasury returns the treasury address.
func (e *Engine) Treasury() account.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.treasury
}

// LockStatus reports whether the reentrancy guard is currently held.
func (e *Engine) LockStatus() bool {
	return e.guard.Locked()
}

// TotalSupply returns the total stake deposited.
func (e *Engine) TotalSupply() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.TotalStake()
}

// BalanceOf returns the account's stake balance.
func (e *Engine) BalanceOf(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.BalanceOf(a)
}

// Earned returns the account's currently claimable rewards.
func (e *Engine) Earned(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Earned(a)
}

// AllTimeEarned returns everything the account has ever been owed:
// rewards already claimed plus those still accruing.
func (e *Engine) AllTimeEarned(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.ledger.Earned(a)
	if claimed, ok := e.allTimeClaimed[a]; ok {
		total.Add(total, claimed)
	}
	return total
}

// UserAllowance returns how much the account has approved the contract to
// pull from the staking token. Zero when no token is configured.
func (e *Engine) UserAllowance(a account.Address) (*big.Int, error) {
	if e.tokens == nil || e.token.IsZero() {
		return new(big.Int), nil
	}
	allowed, err := e.tokens.Allowance(e.token, a, e.self)
	if err != nil {
		return nil, fmt.Errorf("%w: allowance: %w", chain.ErrTransferFailed, err)
	}
	return allowed, nil
}

// RewardPerTokenPaid returns the account's accumulator checkpoint.
func (e *Engine) RewardPerTokenPaid(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.RewardPerTokenPaid(a)
}

// StoredRewards returns the account's banked reward amount.
func (e *Engine) StoredRewards(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.StoredRewards(a)
}

func (e *Engine) creditClaimed(a account.Address, amount *big.Int) {
	if v, ok := e.allTimeClaimed[a]; ok {
		v.Add(v, amount)
		return
	}
	e.allTimeClaimed[a] = new(big.Int).Set(amount)
}

func (e *Engine) emit(ev chain.Event) {
	if e.sink != nil {
		e.sink.Emit(ev)
	}
}
