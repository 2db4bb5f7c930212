package store

import (
	"math/big"
	"sync"

	"github.com/nulsoracles/librevdist-go/account"
)

// ContractState is the durable snapshot of a distribution engine: the
// registry (serialized through the registry binary codec), the payout
// counters and the admin address.
type ContractState struct {
	Admin            account.Address
	Registry         []byte
	AllTimeTotal     *big.Int
	AllTimeByAccount map[account.Address]*big.Int
}

// Round is a write-ahead intent record for one distribution round. It is
// written before any transfer happens; each leg is marked as it is paid,
// and the round is marked done after the final counter update. A crash
// mid-round leaves enough information to finish the round exactly once.
type Round struct {
	ID      uint64
	Pool    *big.Int
	Share   *big.Int
	Members []account.Address
	Paid    []bool
	Done    bool
}

// Store persists distribution engine state and payout intent rounds.
type Store interface {
	// SaveState persists the full contract state snapshot.
	SaveState(s *ContractState) error

	// LoadState returns the last saved snapshot, or ErrNoState.
	LoadState() (*ContractState, error)

	// BeginRound records a new payout intent round and assigns its ID.
	BeginRound(pool, share *big.Int, members []account.Address) (*Round, error)

	// MarkPaid flags one leg of a round as transferred.
	MarkPaid(id uint64, leg int) error

	// CommitRound persists the state snapshot and flags the round as
	// fully committed in a single atomic write. A crash can therefore
	// never leave the counters saved with the round still pending, or
	// the reverse.
	CommitRound(state *ContractState, id uint64) error

	// PendingRound returns the newest incomplete round, or ErrRoundNotFound.
	PendingRound() (*Round, error)

	// Close releases underlying resources.
	Close() error
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu     sync.Mutex
	state  *ContractState
	rounds map[uint64]*Round
	seq    uint64
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{rounds: make(map[uint64]*Round)}
}

// SaveState persists the full contract state snapshot.
func (s *MemStore) SaveState(state *ContractState) error {
	if state == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	return nil
}

// LoadState returns the last saved snapshot.
func (s *MemStore) LoadState() (*ContractState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNoState
	}
	return cloneState(s.state), nil
}

// BeginRound records a new payout intent round.
func (s *MemStore) BeginRound(pool, share *big.Int, members []account.Address) (*Round, error) {
	if pool == nil || share == nil {
		return nil, ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r := &Round{
		ID:      s.seq,
		Pool:    new(big.Int).Set(pool),
		Share:   new(big.Int).Set(share),
		Members: append([]account.Address(nil), members...),
		Paid:    make([]bool, len(members)),
	}
	s.rounds[r.ID] = r
	return cloneRound(r), nil
}

// MarkPaid flags one leg of a round as transferred.
func (s *MemStore) MarkPaid(id uint64, leg int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return ErrRoundNotFound
	}
	if leg < 0 || leg >= len(r.Paid) {
		return ErrInvalidLeg
	}
	r.Paid[leg] = true
	return nil
}

// CommitRound saves the state snapshot and marks the round done together.
func (s *MemStore) CommitRound(state *ContractState, id uint64) error {
	if state == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return ErrRoundNotFound
	}
	s.state = cloneState(state)
	r.Done = true
	return nil
}

// PendingRound returns the newest incomplete round.
func (s *MemStore) PendingRound() (*Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *Round
	for _, r := range s.rounds {
		if r.Done {
			continue
		}
		if newest == nil || r.ID > newest.ID {
			newest = r
		}
	}
	if newest == nil {
		return nil, ErrRoundNotFound
	}
	return cloneRound(newest), nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

func cloneState(in *ContractState) *ContractState {
	out := &ContractState{
		Admin:            in.Admin,
		Registry:         append([]byte(nil), in.Registry...),
		AllTimeTotal:     new(big.Int),
		AllTimeByAccount: make(map[account.Address]*big.Int, len(in.AllTimeByAccount)),
	}
	if in.AllTimeTotal != nil {
		out.AllTimeTotal.Set(in.AllTimeTotal)
	}
	for k, v := range in.AllTimeByAccount {
		out.AllTimeByAccount[k] = new(big.Int).Set(v)
	}
	return out
}

func cloneRound(in *Round) *Round {
	return &Round{
		ID:      in.ID,
		Pool:    new(big.Int).Set(in.Pool),
		Share:   new(big.Int).Set(in.Share),
		Members: append([]account.Address(nil), in.Members...),
		Paid:    append([]bool(nil), in.Paid...),
		Done:    in.Done,
	}
}
