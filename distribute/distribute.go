package distribute

import (
	"math/big"

	"github.com/nulsoracles/librevdist-go/account"
)

// Payout is a single planned transfer in a distribution round.
type Payout struct {
	Account account.Address
	Amount  *big.Int
}

// Plan is the outcome of planning a distribution round. A NoOp plan means
// the per-member share fell below the minimum payout floor: the round
// succeeds but transfers nothing and updates no counters.
type Plan struct {
	// Pool is the gross pool balance the round was planned against.
	Pool *big.Int

	// Share is the equal per-member amount, floor(pool / members).
	Share *big.Int

	// Payouts lists one payout per member in registry order. Empty for
	// a NoOp plan.
	Payouts []Payout

	// NoOp marks a round whose share is below the payout floor.
	NoOp bool
}

// SplitEqual computes the equal per-member share by floor division.
// The remainder below one unit per member stays in the pool.
func SplitEqual(pool *big.Int, n int) (*big.Int, error) {
	if pool == nil || pool.Sign() < 0 {
		return nil, ErrInvalidPool
	}
	if n == 0 {
		return nil, ErrNoShareholders
	}
	return new(big.Int).Quo(pool, big.NewInt(int64(n))), nil
}

// NewPlan plans a distribution round of pool across members. If the equal
// share is below minPayout the returned plan is a NoOp; otherwise it lists
// a payout of the share amount for every member in order.
func NewPlan(pool *big.Int, members []account.Address, minPayout *big.Int) (*Plan, error) {
	share, err := SplitEqual(pool, len(members))
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Pool:  new(big.Int).Set(pool),
		Share: share,
	}
	if minPayout != nil && share.Cmp(minPayout) < 0 {
		p.NoOp = true
		return p, nil
	}

	p.Payouts = make([]Payout, len(members))
	for i, m := range members {
		p.Payouts[i] = Payout{Account: m, Amount: new(big.Int).Set(share)}
	}
	return p, nil
}

// Total returns the amount actually transferred by the plan, share times
// member count. Zero for a NoOp plan.
func (p *Plan) Total() *big.Int {
	if p.NoOp {
		return new(big.Int)
	}
	return new(big.Int).Mul(p.Share, big.NewInt(int64(len(p.Payouts))))
}
