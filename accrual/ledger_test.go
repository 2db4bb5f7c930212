package accrual

import (
	"math/big"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulsoracles/librevdist-go/account"
)

func addr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func newTestLedger(t *testing.T) (*Ledger, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	return New(clock), clock
}

// fund sets up a reward period paying rate units per second for long enough
// that tests never run past periodFinish.
func fund(t *testing.T, l *Ledger, rate int64) {
	t.Helper()
	const duration = 1_000_000
	require.NoError(t, l.NotifyRewardAmount(big.NewInt(rate*duration), duration))
	require.Equal(t, rate, l.RewardRate().Int64())
}

func TestRewardPerToken_ZeroStake(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	before := l.RewardPerToken()
	clock.Advance(100 * time.Second)

	// Nothing accrues while unstaked, and no division by zero.
	assert.Equal(t, before, l.RewardPerToken())
}

func TestEarned_SingleStaker(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	require.NoError(t, l.Stake(addr(1), big.NewInt(100)))
	clock.Advance(100 * time.Second)

	// The sole staker earns the whole 100s * 1000/s.
	assert.Equal(t, int64(100_000), l.Earned(addr(1)).Int64())
}

func TestEarned_ProportionalToStake(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	require.NoError(t, l.Stake(addr(1), big.NewInt(300)))
	require.NoError(t, l.Stake(addr(2), big.NewInt(100)))
	clock.Advance(100 * time.Second)

	assert.Equal(t, int64(75_000), l.Earned(addr(1)).Int64())
	assert.Equal(t, int64(25_000), l.Earned(addr(2)).Int64())
}

func TestEarned_NonDecreasing(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 7)

	require.NoError(t, l.Stake(addr(1), big.NewInt(13)))

	prev := l.Earned(addr(1))
	for i := 0; i < 10; i++ {
		clock.Advance(17 * time.Second)
		cur := l.Earned(addr(1))
		assert.GreaterOrEqual(t, cur.Cmp(prev), 0)
		prev = cur
	}
}

func TestEarned_WeightSnapshotted(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	require.NoError(t, l.Stake(addr(1), big.NewInt(100)))
	clock.Advance(100 * time.Second)

	// Earnings for the first interval are fixed at the old weight ...
	require.Equal(t, int64(100_000), l.Earned(addr(1)).Int64())

	// ... no matter how the balance changes afterwards.
	require.NoError(t, l.Stake(addr(1), big.NewInt(900)))
	assert.Equal(t, int64(100_000), l.Earned(addr(1)).Int64())

	clock.Advance(10 * time.Second)
	assert.Equal(t, int64(110_000), l.Earned(addr(1)).Int64())
}

func TestStake_Validation(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.ErrorIs(t, l.Stake(addr(1), nil), ErrInvalidAmount)
	assert.ErrorIs(t, l.Stake(addr(1), big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, l.Stake(addr(1), big.NewInt(-5)), ErrInvalidAmount)
}

func TestWithdraw(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	require.NoError(t, l.Stake(addr(1), big.NewInt(100)))
	clock.Advance(50 * time.Second)

	require.NoError(t, l.Withdraw(addr(1), big.NewInt(40)))
	assert.Equal(t, int64(60), l.BalanceOf(addr(1)).Int64())
	assert.Equal(t, int64(60), l.TotalStake().Int64())

	// Rewards earned before the withdrawal stay banked.
	assert.Equal(t, int64(50_000), l.StoredRewards(addr(1)).Int64())
	assert.Equal(t, int64(50_000), l.Earned(addr(1)).Int64())
}

func TestWithdraw_Insufficient(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Stake(addr(1), big.NewInt(10)))
	assert.ErrorIs(t, l.Withdraw(addr(1), big.NewInt(11)), ErrInsufficientStake)
	assert.ErrorIs(t, l.Withdraw(addr(2), big.NewInt(1)), ErrInsufficientStake)
}

func TestClaim(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)

	require.NoError(t, l.Stake(addr(1), big.NewInt(100)))
	clock.Advance(100 * time.Second)

	claimed := l.Claim(addr(1))
	assert.Equal(t, int64(100_000), claimed.Int64())
	assert.Equal(t, int64(0), l.Earned(addr(1)).Int64())

	// Claiming again immediately yields nothing.
	assert.Equal(t, int64(0), l.Claim(addr(1)).Int64())

	// Accrual continues after a claim.
	clock.Advance(10 * time.Second)
	assert.Equal(t, int64(10_000), l.Earned(addr(1)).Int64())
}

func TestNotifyRewardAmount_Validation(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.ErrorIs(t, l.NotifyRewardAmount(nil, 100), ErrInvalidAmount)
	assert.ErrorIs(t, l.NotifyRewardAmount(big.NewInt(-1), 100), ErrInvalidAmount)
	assert.ErrorIs(t, l.NotifyRewardAmount(big.NewInt(100), 0), ErrInvalidDuration)
}

func TestNotifyRewardAmount_Rollover(t *testing.T) {
	l, clock := newTestLedger(t)

	require.NoError(t, l.NotifyRewardAmount(big.NewInt(1000), 100))
	require.Equal(t, int64(10), l.RewardRate().Int64())

	// Halfway through, fund again: 500 leftover + 1500 new over 100s.
	clock.Advance(50 * time.Second)
	require.NoError(t, l.NotifyRewardAmount(big.NewInt(1500), 100))
	assert.Equal(t, int64(20), l.RewardRate().Int64())
	assert.Equal(t, clock.Now().Unix()+100, l.PeriodFinish())
}

func TestAccrualStopsAtPeriodFinish(t *testing.T) {
	l, clock := newTestLedger(t)
	require.NoError(t, l.NotifyRewardAmount(big.NewInt(1000), 100))
	require.NoError(t, l.Stake(addr(1), big.NewInt(1)))

	clock.Advance(500 * time.Second)
	assert.Equal(t, int64(1000), l.Earned(addr(1)).Int64())
}

func TestSnapshotRestore(t *testing.T) {
	l, clock := newTestLedger(t)
	fund(t, l, 1000)
	require.NoError(t, l.Stake(addr(1), big.NewInt(100)))
	clock.Advance(100 * time.Second)

	snap := l.Snapshot()
	_ = l.Claim(addr(1))
	require.NoError(t, l.Withdraw(addr(1), big.NewInt(100)))

	l.Restore(snap)
	assert.Equal(t, int64(100), l.BalanceOf(addr(1)).Int64())
	assert.Equal(t, int64(100), l.TotalStake().Int64())
	assert.Equal(t, int64(100_000), l.Earned(addr(1)).Int64())
}

func TestViews_DefaultZero(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.Equal(t, int64(0), l.BalanceOf(addr(9)).Int64())
	assert.Equal(t, int64(0), l.RewardPerTokenPaid(addr(9)).Int64())
	assert.Equal(t, int64(0), l.StoredRewards(addr(9)).Int64())
	assert.Equal(t, int64(0), l.Earned(addr(9)).Int64())
}
