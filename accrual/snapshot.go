package accrual

import (
	"math/big"

	"github.com/nulsoracles/librevdist-go/account"
)

// Snapshot captures the full ledger state for later Restore, so an engine
// can roll an operation back when a downstream transfer fails.
type Snapshot struct {
	totalStake           *big.Int
	rewardRate           *big.Int
	rewardPerTokenStored *big.Int
	lastUpdate           int64
	periodFinish         int64
	balances             map[account.Address]*big.Int
	paid                 map[account.Address]*big.Int
	rewards              map[account.Address]*big.Int
}

// Snapshot returns a deep copy of the current ledger state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		totalStake:           new(big.Int).Set(l.totalStake),
		rewardRate:           new(big.Int).Set(l.rewardRate),
		rewardPerTokenStored: new(big.Int).Set(l.rewardPerTokenStored),
		lastUpdate:           l.lastUpdate,
		periodFinish:         l.periodFinish,
		balances:             copyAmounts(l.balances),
		paid:                 copyAmounts(l.paid),
		rewards:              copyAmounts(l.rewards),
	}
}

// Restore rolls the ledger back to a previously captured snapshot.
func (l *Ledger) Restore(s Snapshot) {
	l.totalStake = new(big.Int).Set(s.totalStake)
	l.rewardRate = new(big.Int).Set(s.rewardRate)
	l.rewardPerTokenStored = new(big.Int).Set(s.rewardPerTokenStored)
	l.lastUpdate = s.lastUpdate
	l.periodFinish = s.periodFinish
	l.balances = copyAmounts(s.balances)
	l.paid = copyAmounts(s.paid)
	l.rewards = copyAmounts(s.rewards)
}

func copyAmounts(m map[account.Address]*big.Int) map[account.Address]*big.Int {
	out := make(map[account.Address]*big.Int, len(m))
	for k, v := range m {
		out[k] = new(big.Int).Set(v)
	}
	return out
}
