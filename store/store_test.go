package store

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulsoracles/librevdist-go/account"
	"github.com/nulsoracles/librevdist-go/registry"
)

// regBytes serializes an initialized registry holding the given members.
func regBytes(t *testing.T, members ...account.Address) []byte {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Init(members))
	data, err := registry.Serialize(r)
	require.NoError(t, err)
	return data
}

func addr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

// openStores returns one store of each implementation so every test runs
// against both.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "revdist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })
	return map[string]Store{
		"bolt": bolt,
		"mem":  NewMemStore(),
	}
}

func TestStateRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadState()
			assert.ErrorIs(t, err, ErrNoState)

			state := &ContractState{
				Admin:        addr(0xAD),
				Registry:     regBytes(t, addr(1), addr(2)),
				AllTimeTotal: big.NewInt(3_000_000),
				AllTimeByAccount: map[account.Address]*big.Int{
					addr(1): big.NewInt(1_500_000),
					addr(2): big.NewInt(1_500_000),
				},
			}
			require.NoError(t, s.SaveState(state))

			loaded, err := s.LoadState()
			require.NoError(t, err)
			assert.Equal(t, state.Admin, loaded.Admin)
			assert.Equal(t, state.Registry, loaded.Registry)

			// Stored registry bytes decode back to the same members.
			reg, err := registry.Deserialize(loaded.Registry)
			require.NoError(t, err)
			assert.True(t, reg.Initialized())
			assert.Equal(t, []account.Address{addr(1), addr(2)}, reg.Members())
			assert.Equal(t, 0, state.AllTimeTotal.Cmp(loaded.AllTimeTotal))
			require.Len(t, loaded.AllTimeByAccount, 2)
			assert.Equal(t, 0, loaded.AllTimeByAccount[addr(1)].Cmp(big.NewInt(1_500_000)))
		})
	}
}

func TestSaveState_Overwrites(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			first := &ContractState{Admin: addr(1), AllTimeTotal: big.NewInt(1)}
			second := &ContractState{Admin: addr(2), AllTimeTotal: big.NewInt(2)}
			require.NoError(t, s.SaveState(first))
			require.NoError(t, s.SaveState(second))

			loaded, err := s.LoadState()
			require.NoError(t, err)
			assert.Equal(t, addr(2), loaded.Admin)
		})
	}
}

func TestSaveState_Nil(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.SaveState(nil), ErrNilParam)
		})
	}
}

func TestRoundLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			members := []account.Address{addr(1), addr(2), addr(3)}

			r, err := s.BeginRound(big.NewInt(3_000_000), big.NewInt(1_000_000), members)
			require.NoError(t, err)
			assert.NotZero(t, r.ID)
			assert.Equal(t, members, r.Members)
			assert.Equal(t, []bool{false, false, false}, r.Paid)

			require.NoError(t, s.MarkPaid(r.ID, 0))
			require.NoError(t, s.MarkPaid(r.ID, 1))

			pending, err := s.PendingRound()
			require.NoError(t, err)
			assert.Equal(t, r.ID, pending.ID)
			assert.Equal(t, []bool{true, true, false}, pending.Paid)
			assert.Equal(t, 0, pending.Pool.Cmp(big.NewInt(3_000_000)))

			require.NoError(t, s.MarkPaid(r.ID, 2))

			// Committing the round saves the final counters and retires
			// the round together.
			final := &ContractState{
				Admin:            addr(0xAD),
				Registry:         regBytes(t, members...),
				AllTimeTotal:     big.NewInt(3_000_000),
				AllTimeByAccount: map[account.Address]*big.Int{},
			}
			require.NoError(t, s.CommitRound(final, r.ID))

			_, err = s.PendingRound()
			assert.ErrorIs(t, err, ErrRoundNotFound)

			loaded, err := s.LoadState()
			require.NoError(t, err)
			assert.Equal(t, 0, loaded.AllTimeTotal.Cmp(big.NewInt(3_000_000)))
		})
	}
}

func TestPendingRound_NewestFirst(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			members := []account.Address{addr(1)}
			r1, err := s.BeginRound(big.NewInt(10), big.NewInt(10), members)
			require.NoError(t, err)
			r2, err := s.BeginRound(big.NewInt(20), big.NewInt(20), members)
			require.NoError(t, err)
			require.Greater(t, r2.ID, r1.ID)

			pending, err := s.PendingRound()
			require.NoError(t, err)
			assert.Equal(t, r2.ID, pending.ID)
		})
	}
}

func TestMarkPaid_Errors(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.MarkPaid(999, 0), ErrRoundNotFound)

			r, err := s.BeginRound(big.NewInt(10), big.NewInt(10), []account.Address{addr(1)})
			require.NoError(t, err)
			assert.ErrorIs(t, s.MarkPaid(r.ID, -1), ErrInvalidLeg)
			assert.ErrorIs(t, s.MarkPaid(r.ID, 1), ErrInvalidLeg)
		})
	}
}

func TestCommitRound_Errors(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			state := &ContractState{Admin: addr(1), AllTimeTotal: big.NewInt(1)}
			assert.ErrorIs(t, s.CommitRound(state, 999), ErrRoundNotFound)
			assert.ErrorIs(t, s.CommitRound(nil, 1), ErrNilParam)

			// A commit against a missing round must not save the state
			// half of the write either.
			_, err := s.LoadState()
			assert.ErrorIs(t, err, ErrNoState)
		})
	}
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revdist.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	state := &ContractState{
		Admin:            addr(0xAD),
		AllTimeTotal:     big.NewInt(42),
		AllTimeByAccount: map[account.Address]*big.Int{},
	}
	require.NoError(t, s.SaveState(state))
	r, err := s.BeginRound(big.NewInt(10), big.NewInt(10), []account.Address{addr(1)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// State and the incomplete round survive a restart.
	s2, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.LoadState()
	require.NoError(t, err)
	assert.Equal(t, addr(0xAD), loaded.Admin)

	pending, err := s2.PendingRound()
	require.NoError(t, err)
	assert.Equal(t, r.ID, pending.ID)
}
