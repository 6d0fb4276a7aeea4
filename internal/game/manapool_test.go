package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManaPoolBurnGating(t *testing.T) {
	pool := NewManaPool(SuitFire)

	assert.True(t, pool.HasEnoughManaForBurn(1))
	assert.False(t, pool.HasEnoughManaForBurn(3))

	pool.Add(newCard(1, SuitFire))
	pool.Add(newCard(2, SuitFire))

	assert.True(t, pool.HasEnoughManaForBurn(3))
	assert.False(t, pool.HasEnoughManaForBurn(2))
	assert.False(t, pool.HasEnoughManaForBurn(4))
}

func TestManaPoolAddRevealsAndRejectsOtherSuits(t *testing.T) {
	pool := NewManaPool(SuitWater)
	card := newCard(1, SuitWater)

	pool.Add(card)
	assert.True(t, card.Revealed)
	assert.Same(t, card, pool.Top())

	assert.Panics(t, func() { pool.Add(newCard(2, SuitWood)) })
}

func TestManaPoolPopN(t *testing.T) {
	pool := NewManaPool(SuitEarth)
	a, b, c := newCard(1, SuitEarth), newCard(2, SuitEarth), newCard(3, SuitEarth)
	pool.Add(a, b, c)

	assert.Equal(t, []*Card{c, b}, pool.popN(2))
	assert.Equal(t, []*Card{a}, pool.popN(4))
	assert.True(t, pool.IsEmpty())
}

func TestManaPoolsLocateOnlyMatchesTop(t *testing.T) {
	pools := NewManaPools()
	first, second := newCard(1, SuitMetal), newCard(2, SuitMetal)
	pools.Pool(SuitMetal).Add(first, second)

	assert.Len(t, pools.All(), len(ElementalSuits))
	assert.Nil(t, pools.Pool(SuitKoala))
	assert.Same(t, pools.Pool(SuitMetal), pools.Locate(second))
	assert.Nil(t, pools.Locate(first))
	assert.True(t, pools.Contains(first))
	assert.Equal(t, 2, pools.Total())

	taken := pools.takeAll()
	assert.Len(t, taken, 2)
	assert.Zero(t, pools.Total())
}
