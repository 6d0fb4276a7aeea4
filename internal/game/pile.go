package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// RNG is the source of randomness for shuffles and enemy action rolls.
type RNG interface {
	IntN(n int) int
}

// NewRNG returns a randomly seeded RNG.
func NewRNG() RNG {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRNG returns a deterministic RNG for replays and tests.
func NewSeededRNG(seed uint64) RNG {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// CardGroup is an ordered collection of cards. The last card is the top.
type CardGroup struct {
	cards []*Card
}

// NewCardGroup creates a group holding the given cards in order.
func NewCardGroup(cards ...*Card) *CardGroup {
	return &CardGroup{cards: append([]*Card(nil), cards...)}
}

// Add appends cards to the top of the group.
func (g *CardGroup) Add(cards ...*Card) {
	for _, card := range cards {
		if card != nil {
			g.cards = append(g.cards, card)
		}
	}
}

// Remove removes the card by reference and reports whether it was present.
func (g *CardGroup) Remove(card *Card) bool {
	idx := g.IndexOf(card)
	if idx < 0 {
		return false
	}
	g.cards = append(g.cards[:idx], g.cards[idx+1:]...)
	return true
}

// IndexOf returns the position of the card, or -1.
func (g *CardGroup) IndexOf(card *Card) int {
	for i, c := range g.cards {
		if sameCard(c, card) {
			return i
		}
	}
	return -1
}

// Contains reports whether the card is in the group.
func (g *CardGroup) Contains(card *Card) bool {
	return g.IndexOf(card) >= 0
}

// Find returns the card with the given ID.
func (g *CardGroup) Find(id uuid.UUID) *Card {
	for _, c := range g.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// At returns the card at index i, or nil when out of range.
func (g *CardGroup) At(i int) *Card {
	if i < 0 || i >= len(g.cards) {
		return nil
	}
	return g.cards[i]
}

// Last returns the top card, or nil when empty.
func (g *CardGroup) Last() *Card {
	if len(g.cards) == 0 {
		return nil
	}
	return g.cards[len(g.cards)-1]
}

// Size returns the number of cards.
func (g *CardGroup) Size() int {
	return len(g.cards)
}

// IsEmpty reports whether the group has no cards.
func (g *CardGroup) IsEmpty() bool {
	return len(g.cards) == 0
}

// Cards returns a copy of the group's cards, bottom first.
func (g *CardGroup) Cards() []*Card {
	return append([]*Card(nil), g.cards...)
}

// Clear removes every card.
func (g *CardGroup) Clear() {
	g.cards = nil
}

// takeAll removes and returns every card.
func (g *CardGroup) takeAll() []*Card {
	cards := g.cards
	g.cards = nil
	return cards
}

// pop removes and returns the top card, or nil when empty.
func (g *CardGroup) pop() *Card {
	if len(g.cards) == 0 {
		return nil
	}
	card := g.cards[len(g.cards)-1]
	g.cards = g.cards[:len(g.cards)-1]
	return card
}

// Hand holds the cards the player drew this turn.
type Hand struct {
	CardGroup
}

// NewHand creates an empty hand.
func NewHand() *Hand {
	return &Hand{}
}

// DrawPile is the player's deck. Cards are drawn from the top.
type DrawPile struct {
	CardGroup
}

// NewDrawPile creates a draw pile holding the given cards.
func NewDrawPile(cards ...*Card) *DrawPile {
	return &DrawPile{CardGroup: *NewCardGroup(cards...)}
}

// Draw removes and returns the top card, or nil when the pile is empty.
func (d *DrawPile) Draw() *Card {
	return d.pop()
}

// DrawMultiple draws up to n cards, stopping early when the pile runs out.
// A negative n draws nothing.
func (d *DrawPile) DrawMultiple(n int) []*Card {
	n = max(n, 0)
	drawn := make([]*Card, 0, n)
	for i := 0; i < n; i++ {
		card := d.Draw()
		if card == nil {
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

// Shuffle randomizes the pile with a Fisher-Yates shuffle and turns every card face down.
func (d *DrawPile) Shuffle(rng RNG) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	for _, card := range d.cards {
		card.Revealed = false
	}
}

// CompostPile collects discarded cards until they are recycled into the deck.
type CompostPile struct {
	CardGroup
}

// NewCompostPile creates an empty compost pile.
func NewCompostPile() *CompostPile {
	return &CompostPile{}
}

// RecycleInto moves every compost card onto the draw pile, top card first.
// It returns the number of cards moved.
func (c *CompostPile) RecycleInto(deck *DrawPile) int {
	moved := 0
	for card := c.pop(); card != nil; card = c.pop() {
		deck.Add(card)
		moved++
	}
	return moved
}

// TrashPile holds cards removed from the rest of the combat.
type TrashPile struct {
	CardGroup
}

// NewTrashPile creates an empty trash pile.
func NewTrashPile() *TrashPile {
	return &TrashPile{}
}
