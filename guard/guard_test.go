package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_EnterExit(t *testing.T) {
	var g Guard
	assert.False(t, g.Locked())

	require.NoError(t, g.Enter())
	assert.True(t, g.Locked())

	require.NoError(t, g.Exit())
	assert.False(t, g.Locked())
}

func TestGuard_DoubleEnter(t *testing.T) {
	var g Guard
	require.NoError(t, g.Enter())
	assert.ErrorIs(t, g.Enter(), ErrAlreadyLocked)
}

func TestGuard_ExitWithoutEnter(t *testing.T) {
	var g Guard
	assert.ErrorIs(t, g.Exit(), ErrNotLocked)
}

func TestGuard_DoReleasesOnError(t *testing.T) {
	var g Guard
	boom := errors.New("boom")

	err := g.Do(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, g.Locked())

	// Guard is reusable after a failed body.
	require.NoError(t, g.Do(func() error { return nil }))
	assert.False(t, g.Locked())
}

func TestGuard_DoBlocksReentrancy(t *testing.T) {
	var g Guard
	err := g.Do(func() error {
		return g.Do(func() error { return nil })
	})
	assert.ErrorIs(t, err, ErrAlreadyLocked)
	assert.False(t, g.Locked())
}
