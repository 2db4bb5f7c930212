package registry

import (
	"github.com/nulsoracles/librevdist-go/account"
)

// Registry is an ordered set of shareholder accounts. The ordered list is
// the source of truth for size and iteration order; the active map is a
// membership flag only.
type Registry struct {
	initialized bool
	active      map[account.Address]bool
	order       []account.Address
}

// New returns an empty, uninitialized registry.
func New() *Registry {
	return &Registry{active: make(map[account.Address]bool)}
}

// Init populates the registry with its initial member set. It may be called
// exactly once; duplicate members are rejected.
func (r *Registry) Init(members []account.Address) error {
	if r.initialized {
		return ErrAlreadyInitialized
	}
	for _, m := range members {
		if r.active[m] {
			return ErrAlreadyMember
		}
		r.active[m] = true
		r.order = append(r.order, m)
	}
	r.initialized = true
	return nil
}

// Initialized reports whether Init has been called.
func (r *Registry) Initialized() bool {
	return r.initialized
}

// Add activates an account and appends it to the ordered list.
func (r *Registry) Add(a account.Address) error {
	if r.active[a] {
		return ErrAlreadyMember
	}
	r.active[a] = true
	r.order = append(r.order, a)
	return nil
}

// Remove deactivates an account and deletes its first occurrence from the
// ordered list. Only one occurrence is removed per call.
func (r *Registry) Remove(a account.Address) error {
	if !r.active[a] {
		return ErrNotMember
	}
	r.active[a] = false
	for i := range r.order {
		if r.order[i] == a {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Size returns the number of entries in the ordered list.
func (r *Registry) Size() int {
	return len(r.order)
}

// Contains reports whether the account is an active member.
func (r *Registry) Contains(a account.Address) bool {
	return r.active[a]
}

// Members returns a copy of the ordered member list.
func (r *Registry) Members() []account.Address {
	out := make([]account.Address, len(r.order))
	copy(out, r.order)
	return out
}

// Snapshot captures the full registry state for later Restore.
type Snapshot struct {
	initialized bool
	active      map[account.Address]bool
	order       []account.Address
}

// Snapshot returns a deep copy of the current state.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		initialized: r.initialized,
		active:      make(map[account.Address]bool, len(r.active)),
		order:       make([]account.Address, len(r.order)),
	}
	for k, v := range r.active {
		s.active[k] = v
	}
	copy(s.order, r.order)
	return s
}

// Restore rolls the registry back to a previously captured snapshot.
func (r *Registry) Restore(s Snapshot) {
	r.initialized = s.initialized
	r.active = make(map[account.Address]bool, len(s.active))
	for k, v := range s.active {
		r.active[k] = v
	}
	r.order = make([]account.Address, len(s.order))
	copy(r.order, s.order)
}
