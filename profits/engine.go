package profits

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/nulsoracles/librevdist-go/account"
	"github.com/nulsoracles/librevdist-go/chain"
	"github.com/nulsoracles/librevdist-go/config"
	"github.com/nulsoracles/librevdist-go/distribute"
	"github.com/nulsoracles/librevdist-go/guard"
	"github.com/nulsoracles/librevdist-go/registry"
	"github.com/nulsoracles/librevdist-go/store"
)

// Engine distributes native-coin revenue equally across a shareholder
// registry. One engine models one contract instance: a single writer at a
// time, every operation committing or rolling back as a whole.
type Engine struct {
	mu sync.Mutex

	admin     account.Address
	guard     guard.Guard
	reg       *registry.Registry
	minPayout *big.Int

	allTimeTotal *big.Int
	byAccount    map[account.Address]*big.Int

	xfer chain.Transferor
	sink chain.EventSink
	st   store.Store // nil disables persistence
}

// New creates an engine administered by admin, transferring value through
// xfer. sink and st may be nil to disable event emission and persistence.
func New(admin account.Address, xfer chain.Transferor, sink chain.EventSink, st store.Store, cfg config.Config) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	e := &Engine{
		admin:        admin,
		reg:          registry.New(),
		minPayout:    big.NewInt(cfg.MinPayout),
		allTimeTotal: new(big.Int),
		byAccount:    make(map[account.Address]*big.Int),
		xfer:         xfer,
		sink:         sink,
		st:           st,
	}
	if st != nil {
		if err := e.load(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Initialize populates the shareholder registry. Admin-gated, one-time.
func (e *Engine) Initialize(caller account.Address, members []account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	if err := e.reg.Init(members); err != nil {
		if errors.Is(err, registry.ErrAlreadyInitialized) {
			return ErrAlreadyInitialized
		}
		return err
	}
	return e.persist()
}

// Distribute runs one distribution round over the given pool balance.
// Every member receives floor(pool/size) in registry order; if that share
// is below the payout floor, the call succeeds as a no-op. Any transfer
// failure rolls all in-memory state back to the pre-call snapshot.
func (e *Engine) Distribute(pool *big.Int) error {
	// The guard wraps the mutex so a reentrant call from inside a
	// transfer fails instead of deadlocking.
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.reg.Initialized() {
			return ErrNotInitialized
		}
		plan, err := distribute.NewPlan(pool, e.reg.Members(), e.minPayout)
		if err != nil {
			return err
		}
		if plan.NoOp {
			return nil
		}
		return e.execute(plan)
	})
}

// DistributeBalance distributes the contract's entire current balance.
func (e *Engine) DistributeBalance() error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.reg.Initialized() {
			return ErrNotInitialized
		}
		pool, err := e.xfer.Balance()
		if err != nil {
			return fmt.Errorf("%w: %w", chain.ErrTransferFailed, err)
		}
		plan, err := distribute.NewPlan(pool, e.reg.Members(), e.minPayout)
		if err != nil {
			return err
		}
		if plan.NoOp {
			return nil
		}
		return e.execute(plan)
	})
}

// execute pays out a planned round. The intent record is written before
// the first transfer and each leg is marked as it completes, so a crash
// mid-round can be finished idempotently by Recover. The updated counters
// and the round's done flag are committed in one atomic store write, and
// events are emitted only after that commit.
func (e *Engine) execute(plan *distribute.Plan) error {
	totalSnap := new(big.Int).Set(e.allTimeTotal)
	bySnap := make(map[account.Address]*big.Int, len(e.byAccount))
	for k, v := range e.byAccount {
		bySnap[k] = new(big.Int).Set(v)
	}
	rollback := func() {
		e.allTimeTotal = totalSnap
		e.byAccount = bySnap
	}

	var round *store.Round
	if e.st != nil {
		var err error
		round, err = e.st.BeginRound(plan.Pool, plan.Share, e.reg.Members())
		if err != nil {
			return err
		}
	}

	events := make([]chain.Event, 0, len(plan.Payouts))
	for i, p := range plan.Payouts {
		if err := e.xfer.Transfer(p.Account, p.Amount); err != nil {
			rollback()
			return fmt.Errorf("%w: pay %s: %w", chain.ErrTransferFailed, p.Account, err)
		}
		if round != nil {
			if err := e.st.MarkPaid(round.ID, i); err != nil {
				rollback()
				return err
			}
		}
		e.credit(p.Account, p.Amount)
		events = append(events, chain.RewardPaid{Account: p.Account, Amount: p.Amount})
	}

	// The gross pool is accumulated, not just the amount paid out; the
	// integer-division remainder stays behind but still counts as inflow.
	e.allTimeTotal.Add(e.allTimeTotal, plan.Pool)

	if round != nil {
		if err := e.commitRound(round.ID); err != nil {
			rollback()
			return err
		}
	}
	e.emitAll(events)
	return nil
}

// Recover finishes the newest incomplete distribution round after a crash
// or a failed commit. Legs already marked paid are skipped, so no member
// is paid twice. It is a no-op when no round is pending.
func (e *Engine) Recover() error {
	return e.guard.Do(func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.st == nil {
			return nil
		}
		round, err := e.st.PendingRound()
		if err != nil {
			if errors.Is(err, store.ErrRoundNotFound) {
				return nil
			}
			return err
		}

		totalSnap := new(big.Int).Set(e.allTimeTotal)
		bySnap := make(map[account.Address]*big.Int, len(e.byAccount))
		for k, v := range e.byAccount {
			bySnap[k] = new(big.Int).Set(v)
		}

		events := make([]chain.Event, 0, len(round.Members))
		for i, m := range round.Members {
			if round.Paid[i] {
				continue
			}
			if err := e.xfer.Transfer(m, round.Share); err != nil {
				return fmt.Errorf("%w: pay %s: %w", chain.ErrTransferFailed, m, err)
			}
			if err := e.st.MarkPaid(round.ID, i); err != nil {
				return err
			}
			events = append(events, chain.RewardPaid{Account: m, Amount: round.Share})
		}

		// The durable snapshot predates the round (it is only rewritten
		// by the round's own atomic commit), so counters for every leg,
		// including those paid before the crash, are applied here exactly
		// once.
		for _, m := range round.Members {
			e.credit(m, round.Share)
		}
		e.allTimeTotal.Add(e.allTimeTotal, round.Pool)

		if err := e.commitRound(round.ID); err != nil {
			e.allTimeTotal = totalSnap
			e.byAccount = bySnap
			return err
		}
		e.emitAll(events)
		return nil
	})
}

// AddShareholder activates a new member. Admin-gated.
func (e *Engine) AddShareholder(caller, a account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	if !e.reg.Initialized() {
		return ErrNotInitialized
	}
	snap := e.reg.Snapshot()
	if err := e.reg.Add(a); err != nil {
		return err
	}
	return e.persistOrRestore(snap)
}

// RemoveShareholder deactivates a member. Admin-gated.
func (e *Engine) RemoveShareholder(caller, a account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	if !e.reg.Initialized() {
		return ErrNotInitialized
	}
	snap := e.reg.Snapshot()
	if err := e.reg.Remove(a); err != nil {
		return err
	}
	return e.persistOrRestore(snap)
}

// SetRewardDistribution hands admin rights to next. Only the current admin
// may do this.
func (e *Engine) SetRewardDistribution(caller, next account.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrUnauthorized
	}
	prev := e.admin
	e.admin = next
	if err := e.persist(); err != nil {
		e.admin = prev
		return err
	}
	return nil
}

// RecoverFunds sweeps the contract's full balance to the admin.
func (e *Engine) RecoverFunds(caller account.Address) error {
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

// Admin returns the current admin address.
func (e *Engine) Admin() account.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.admin
}

// LockStatus reports whether the reentrancy guard is currently held.
func (e *Engine) LockStatus() bool {
	return e.guard.Locked()
}

// Initialized reports whether the shareholder registry has been populated.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Initialized()
}

// AllTimeTotal returns the gross amount ever accepted for distribution.
func (e *Engine) AllTimeTotal() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.allTimeTotal)
}

// AllTimeEarned returns the total ever paid to one account.
func (e *Engine) AllTimeEarned(a account.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.byAccount[a]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Shareholders returns the current member list in registry order.
func (e *Engine) Shareholders() []account.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Members()
}

func (e *Engine) credit(a account.Address, amount *big.Int) {
	if v, ok := e.byAccount[a]; ok {
		v.Add(v, amount)
		return
	}
	e.byAccount[a] = new(big.Int).Set(amount)
}

func (e *Engine) emitAll(events []chain.Event) {
	if e.sink == nil {
		return
	}
	for _, ev := range events {
		e.sink.Emit(ev)
	}
}

// snapshotState builds the durable form of the current engine state, with
// the registry serialized through its binary codec.
func (e *Engine) snapshotState() (*store.ContractState, error) {
	reg, err := registry.Serialize(e.reg)
	if err != nil {
		return nil, err
	}
	state := &store.ContractState{
		Admin:            e.admin,
		Registry:         reg,
		AllTimeTotal:     new(big.Int).Set(e.allTimeTotal),
		AllTimeByAccount: make(map[account.Address]*big.Int, len(e.byAccount)),
	}
	for k, v := range e.byAccount {
		state.AllTimeByAccount[k] = new(big.Int).Set(v)
	}
	return state, nil
}

// persist writes the current state snapshot through the store, if any.
func (e *Engine) persist() error {
	if e.st == nil {
		return nil
	}
	state, err := e.snapshotState()
	if err != nil {
		return err
	}
	return e.st.SaveState(state)
}

// commitRound writes the post-round state snapshot and retires the round
// in one atomic store write.
func (e *Engine) commitRound(id uint64) error {
	state, err := e.snapshotState()
	if err != nil {
		return err
	}
	return e.st.CommitRound(state, id)
}

// persistOrRestore persists after a registry mutation, restoring the
// pre-mutation snapshot if the write fails so the failure path observes
// pre-call state.
func (e *Engine) persistOrRestore(snap registry.Snapshot) error {
	if err := e.persist(); err != nil {
		e.reg.Restore(snap)
		return err
	}
	return nil
}

// load restores engine state from the store on construction.
func (e *Engine) load() error {
	state, err := e.st.LoadState()
	if err != nil {
		if errors.Is(err, store.ErrNoState) {
			return nil
		}
		return err
	}
	e.admin = state.Admin
	if len(state.Registry) > 0 {
		reg, err := registry.Deserialize(state.Registry)
		if err != nil {
			return err
		}
		e.reg = reg
	}
	if state.AllTimeTotal != nil {
		e.allTimeTotal.Set(state.AllTimeTotal)
	}
	for k, v := range state.AllTimeByAccount {
		e.byAccount[k] = new(big.Int).Set(v)
	}
	return nil
}
