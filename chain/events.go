package chain

import (
	"math/big"
	"sync"

	"github.com/nulsoracles/librevdist-go/account"
)

// Event is an observable record emitted by a contract engine. Emission
// order within one operation is deterministic (registry order).
type Event interface {
	Name() string
}

// RewardPaid records a payout of Amount to Account.
type RewardPaid struct {
	Account account.Address
	Amount  *big.Int
}

func (RewardPaid) Name() string { return "RewardPaid" }

// RewardAdded records new reward funding arriving at the staking pool.
type RewardAdded struct {
	Amount *big.Int
}

func (RewardAdded) Name() string { return "RewardAdded" }

// Staked records a stake deposit.
type Staked struct {
	Account account.Address
	Amount  *big.Int
}

func (Staked) Name() string { return "Staked" }

// Withdrawn records a stake withdrawal.
type Withdrawn struct {
	Account account.Address
	Amount  *big.Int
}

func (Withdrawn) Name() string { return "Withdrawn" }

// MemSink collects emitted events in order. Safe for concurrent use.
type MemSink struct {
	mu     sync.Mutex
	events []Event
}

// Compile-time interface check.
var _ EventSink = (*MemSink)(nil)

// Emit appends the event to the sink.
func (s *MemSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of all collected events in emission order.
func (s *MemSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
