package guard

import "sync/atomic"

// Guard is a reentrancy flag protecting value-transferring operations.
// It is a no-wait lock: a second Enter fails instead of blocking, which
// mirrors the contract-VM flag it replaces. Safe for concurrent use.
type Guard struct {
	locked atomic.Bool
}

// Enter acquires the guard. A second Enter without an intervening Exit
// fails with ErrAlreadyLocked.
func (g *Guard) Enter() error {
	if !g.locked.CompareAndSwap(false, true) {
		return ErrAlreadyLocked
	}
	return nil
}

// Exit releases the guard. Exit without a prior Enter fails with ErrNotLocked.
func (g *Guard) Exit() error {
	if !g.locked.CompareAndSwap(true, false) {
		return ErrNotLocked
	}
	return nil
}

// Locked reports the current lock status.
func (g *Guard) Locked() bool {
	return g.locked.Load()
}

// Do runs fn with the guard held. The guard is released on every return
// path, so a failing fn never leaves the guard permanently locked.
func (g *Guard) Do(fn func() error) error {
	if err := g.Enter(); err != nil {
		return err
	}
	defer func() { _ = g.Exit() }()
	return fn()
}
