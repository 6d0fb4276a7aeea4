package game

import "fmt"

// ManaPool is a stack of burned cards of a single suit.
type ManaPool struct {
	CardGroup
	suit Suit
}

// NewManaPool creates an empty pool for the suit.
func NewManaPool(suit Suit) *ManaPool {
	return &ManaPool{suit: suit}
}

// Suit returns the pool's suit.
func (p *ManaPool) Suit() Suit {
	return p.suit
}

// Add pushes cards onto the pool. Adding a card of another suit is a
// programming error and panics.
func (p *ManaPool) Add(cards ...*Card) {
	for _, card := range cards {
		if card == nil {
			continue
		}
		if card.Suit != p.suit {
			panic(fmt.Sprintf("mana pool %s: cannot add %s card %s", p.suit, card.Suit, card.ID))
		}
		card.Revealed = true
		p.CardGroup.Add(card)
	}
}

// HasEnoughManaForBurn reports whether a card of the given rank may be burned
// into this pool: the pool must hold exactly rank-1 cards.
func (p *ManaPool) HasEnoughManaForBurn(rank int) bool {
	return p.Size() == rank-1
}

// Top returns the most recently burned card.
func (p *ManaPool) Top() *Card {
	return p.Last()
}

// popN removes up to n cards from the top of the pool.
func (p *ManaPool) popN(n int) []*Card {
	taken := make([]*Card, 0, n)
	for i := 0; i < n; i++ {
		card := p.pop()
		if card == nil {
			break
		}
		taken = append(taken, card)
	}
	return taken
}

// ManaPools holds one pool per elemental suit.
type ManaPools struct {
	order []Suit
	pools map[Suit]*ManaPool
}

// NewManaPools creates empty pools for the given suits.
func NewManaPools(suits ...Suit) *ManaPools {
	if len(suits) == 0 {
		suits = ElementalSuits
	}
	mp := &ManaPools{
		order: append([]Suit(nil), suits...),
		pools: make(map[Suit]*ManaPool, len(suits)),
	}
	for _, suit := range suits {
		mp.pools[suit] = NewManaPool(suit)
	}
	return mp
}

// Pool returns the pool for the suit, or nil when the suit has none.
func (mp *ManaPools) Pool(suit Suit) *ManaPool {
	return mp.pools[suit]
}

// All returns every pool in suit order.
func (mp *ManaPools) All() []*ManaPool {
	all := make([]*ManaPool, 0, len(mp.order))
	for _, suit := range mp.order {
		all = append(all, mp.pools[suit])
	}
	return all
}

// Total returns the number of cards across all pools.
func (mp *ManaPools) Total() int {
	total := 0
	for _, pool := range mp.pools {
		total += pool.Size()
	}
	return total
}

// Locate returns the pool whose top card is the given card.
func (mp *ManaPools) Locate(card *Card) *ManaPool {
	for _, suit := range mp.order {
		pool := mp.pools[suit]
		if sameCard(pool.Top(), card) {
			return pool
		}
	}
	return nil
}

// Contains reports whether any pool holds the card.
func (mp *ManaPools) Contains(card *Card) bool {
	for _, pool := range mp.pools {
		if pool.Contains(card) {
			return true
		}
	}
	return false
}

// takeAll empties every pool and returns the removed cards.
func (mp *ManaPools) takeAll() []*Card {
	var cards []*Card
	for _, suit := range mp.order {
		cards = append(cards, mp.pools[suit].takeAll()...)
	}
	return cards
}
