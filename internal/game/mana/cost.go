package mana

import "fmt"

// CastCost describes what casting a spell of a given rank costs against the
// mana pool of the spell's suit.
type CastCost struct {
	Rank     int
	PoolSize int
	// Debug spells bypass mana pools and are paid entirely in diamonds.
	Debug bool
}

// NewCastCost builds the cost of casting a spell of rank against a pool of poolSize cards.
func NewCastCost(rank, poolSize int, debug bool) CastCost {
	return CastCost{Rank: rank, PoolSize: poolSize, Debug: debug}
}

// Shortfall returns the number of diamonds required to cover the missing mana.
func (c CastCost) Shortfall() int {
	if c.Debug {
		return max(0, c.Rank)
	}
	return max(0, c.Rank-c.PoolSize)
}

// PoolCards returns the number of pool cards consumed by the cast.
func (c CastCost) PoolCards() int {
	if c.Debug {
		return 0
	}
	return max(0, min(c.Rank, c.PoolSize))
}

// String returns a short human-readable form of the cost.
func (c CastCost) String() string {
	if c.Debug {
		return fmt.Sprintf("%d diamonds", c.Shortfall())
	}
	return fmt.Sprintf("rank %d (pool %d, shortfall %d)", c.Rank, c.PoolSize, c.Shortfall())
}
