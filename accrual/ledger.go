package accrual

import (
	"math/big"

	"github.com/jonboulle/clockwork"

	"github.com/nulsoracles/librevdist-go/account"
)

// Scale is the fixed-point factor retaining fractional precision through
// integer division. Applied when accumulating reward-per-stake, removed
// symmetrically when computing per-account earnings.
var Scale = big.NewInt(100_000_000)

// Ledger maintains a global reward-per-unit-stake accumulator plus
// per-account checkpoints, so earnings are computed in O(1) per account
// regardless of account count or elapsed time.
//
// The central invariant: the accumulator must be refreshed before any
// operation that changes an account's stake weight, so the elapsed
// interval is attributed at the pre-mutation weight.
type Ledger struct {
	clock clockwork.Clock

	totalStake           *big.Int
	rewardRate           *big.Int // reward units per second
	rewardPerTokenStored *big.Int
	lastUpdate           int64 // unix seconds
	periodFinish         int64 // unix seconds; accrual stops here

	balances map[account.Address]*big.Int
	paid     map[account.Address]*big.Int // accumulator checkpoint per account
	rewards  map[account.Address]*big.Int // banked rewards per account
}

// New returns an empty ledger reading time from clock. A nil clock falls
// back to the real clock.
func New(clock clockwork.Clock) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ledger{
		clock:                clock,
		totalStake:           new(big.Int),
		rewardRate:           new(big.Int),
		rewardPerTokenStored: new(big.Int),
		balances:             make(map[account.Address]*big.Int),
		paid:                 make(map[account.Address]*big.Int),
		rewards:              make(map[account.Address]*big.Int),
	}
}

// lastTimeRewardApplicable caps accrual at the end of the funding period.
func (l *Ledger) lastTimeRewardApplicable() int64 {
	now := l.clock.Now().Unix()
	if now < l.periodFinish {
		return now
	}
	return l.periodFinish
}

// RewardPerToken returns the scaled cumulative reward per unit of stake.
// With zero total stake the stored value is returned unchanged: nothing
// accrues while unstaked, and there is no division by zero.
func (l *Ledger) RewardPerToken() *big.Int {
	if l.totalStake.Sign() == 0 {
		return new(big.Int).Set(l.rewardPerTokenStored)
	}
	elapsed := big.NewInt(l.lastTimeRewardApplicable() - l.lastUpdate)
	accrued := new(big.Int).Mul(elapsed, l.rewardRate)
	accrued.Mul(accrued, Scale)
	accrued.Quo(accrued, l.totalStake)
	return accrued.Add(accrued, l.rewardPerTokenStored)
}

// Earned returns everything the account is owed: the banked amount plus
// its stake weighted over the accumulator delta since its last checkpoint.
func (l *Ledger) Earned(a account.Address) *big.Int {
	delta := l.RewardPerToken()
	delta.Sub(delta, l.checkpoint(a))

	earned := new(big.Int).Mul(l.balance(a), delta)
	earned.Quo(earned, Scale)
	return earned.Add(earned, l.banked(a))
}

// Refresh advances the global accumulator and checkpoints the account,
// banking its earnings so far. Must precede any mutation of the account's
// balance or of total stake.
func (l *Ledger) Refresh(a account.Address) {
	l.rewards[a] = l.Earned(a)
	l.Sync()
	l.paid[a] = new(big.Int).Set(l.rewardPerTokenStored)
}

// Sync advances the global accumulator without touching any account.
func (l *Ledger) Sync() {
	l.rewardPerTokenStored = l.RewardPerToken()
	l.lastUpdate = l.lastTimeRewardApplicable()
}

// Stake credits amount of stake to the account.
func (l *Ledger) Stake(a account.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.Refresh(a)
	l.totalStake.Add(l.totalStake, amount)
	l.balances[a] = new(big.Int).Add(l.balance(a), amount)
	return nil
}

// Withdraw debits amount of stake from the account.
func (l *Ledger) Withdraw(a account.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if l.balance(a).Cmp(amount) < 0 {
		return ErrInsufficientStake
	}
	l.Refresh(a)
	l.totalStake.Sub(l.totalStake, amount)
	l.balances[a] = new(big.Int).Sub(l.balance(a), amount)
	return nil
}

// Claim banks and then zeroes the account's accrued rewards, returning
// the claimed amount. Claiming with nothing accrued returns zero.
func (l *Ledger) Claim(a account.Address) *big.Int {
	l.Refresh(a)
	claimed := l.banked(a)
	l.rewards[a] = new(big.Int)
	return claimed
}

// NotifyRewardAmount funds a new reward period of the given duration in
// seconds. If the previous period has not finished, its remaining rewards
// roll over into the new rate.
func (l *Ledger) NotifyRewardAmount(amount *big.Int, duration int64) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}
	l.Sync()

	now := l.clock.Now().Unix()
	d := big.NewInt(duration)
	if now >= l.periodFinish {
		l.rewardRate = new(big.Int).Quo(amount, d)
	} else {
		remaining := big.NewInt(l.periodFinish - now)
		leftover := remaining.Mul(remaining, l.rewardRate)
		l.rewardRate = leftover.Add(leftover, amount).Quo(leftover, d)
	}
	l.lastUpdate = now
	l.periodFinish = now + duration
	return nil
}

// TotalStake returns the sum of all account stake balances.
func (l *Ledger) TotalStake() *big.Int {
	return new(big.Int).Set(l.totalStake)
}

// BalanceOf returns the account's stake balance.
func (l *Ledger) BalanceOf(a account.Address) *big.Int {
	return new(big.Int).Set(l.balance(a))
}

// RewardPerTokenPaid returns the account's accumulator checkpoint.
func (l *Ledger) RewardPerTokenPaid(a account.Address) *big.Int {
	return new(big.Int).Set(l.checkpoint(a))
}

// StoredRewards returns the account's banked reward amount.
func (l *Ledger) StoredRewards(a account.Address) *big.Int {
	return new(big.Int).Set(l.banked(a))
}

// RewardRate returns the current reward rate in units per second.
func (l *Ledger) RewardRate() *big.Int {
	return new(big.Int).Set(l.rewardRate)
}

// PeriodFinish returns the unix time at which accrual stops.
func (l *Ledger) PeriodFinish() int64 {
	return l.periodFinish
}

var zero = new(big.Int)

// balance returns the account's stake, zero when absent. Callers must not
// mutate the result.
func (l *Ledger) balance(a account.Address) *big.Int {
	if b, ok := l.balances[a]; ok {
		return b
	}
	return zero
}

func (l *Ledger) checkpoint(a account.Address) *big.Int {
	if p, ok := l.paid[a]; ok {
		return p
	}
	return zero
}

func (l *Ledger) banked(a account.Address) *big.Int {
	if r, ok := l.rewards[a]; ok {
		return r
	}
	return zero
}
