package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game/counters"
)

// Suit is the element of a card. Every mana pool holds cards of one suit.
type Suit string

const (
	SuitWood  Suit = "wood"
	SuitFire  Suit = "fire"
	SuitEarth Suit = "earth"
	SuitMetal Suit = "metal"
	SuitWater Suit = "water"
	// SuitKoala marks debug cards. It has no mana pool.
	SuitKoala Suit = "koala"
)

// ElementalSuits lists the suits that have mana pools, in display order.
var ElementalSuits = []Suit{SuitWood, SuitFire, SuitEarth, SuitMetal, SuitWater}

func (s Suit) String() string {
	return string(s)
}

// IsDebug reports whether the suit is the debug suit.
func (s Suit) IsDebug() bool {
	return s == SuitKoala
}

// Valid reports whether s is a known suit.
func (s Suit) Valid() bool {
	if s == SuitKoala {
		return true
	}
	for _, suit := range ElementalSuits {
		if s == suit {
			return true
		}
	}
	return false
}

// ParseSuit parses a suit name, ignoring case and surrounding whitespace.
func ParseSuit(name string) (Suit, error) {
	s := Suit(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown suit %q", name)
	}
	return s, nil
}

// Effect is the behavior of a spell, summon or enemy action. It receives a
// handle to the running combat and may mutate any of its state.
type Effect func(h *Handle)

// DefaultAnimationTime is how long a spell cast takes when the card does not say.
const DefaultAnimationTime = 800 * time.Millisecond

// CardSpec is the persistent definition of a card in a player's deck.
// A spec with an Effect is a spell; without one it is a mana card.
type CardSpec struct {
	Rank          int
	Suit          Suit
	Name          string
	Description   string
	Effect        Effect
	Charges       int // 0 means unlimited
	Keywords      []string
	AnimationTime time.Duration
}

// IsSpell reports whether the spec describes a spell.
func (s CardSpec) IsSpell() bool {
	return s.Effect != nil
}

// NewCard creates a fresh combat instance of the spec.
func (s CardSpec) NewCard() *Card {
	card := &Card{
		ID:   uuid.New(),
		Rank: s.Rank,
		Suit: s.Suit,
	}
	if s.IsSpell() {
		card.Spell = &Spell{
			Name:          s.Name,
			Description:   s.Description,
			Effect:        s.Effect,
			Keywords:      append([]string(nil), s.Keywords...),
			AnimationTime: s.AnimationTime,
			Counters:      counters.NewCounters(),
		}
		if s.Charges > 0 {
			card.Spell.limited = true
			card.Spell.Counters.Add(counters.CounterTypeCharge, s.Charges)
		}
	}
	return card
}

// Spell holds the spell-only attributes of a card.
type Spell struct {
	Name          string
	Description   string
	Effect        Effect
	Keywords      []string
	AnimationTime time.Duration
	Counters      *counters.Counters
	limited       bool
}

// Card is a single card within a combat. Cards are identified by ID and move
// between piles by reference.
type Card struct {
	ID       uuid.UUID
	Rank     int
	Suit     Suit
	Revealed bool
	Spell    *Spell
}

// IsSpell reports whether the card is a spell.
func (c *Card) IsSpell() bool {
	return c != nil && c.Spell != nil
}

// IsDummy reports whether the card is a placeholder that cannot be selected.
func (c *Card) IsDummy() bool {
	return c == nil || (c.Rank <= 0 && !c.IsSpell())
}

// Name returns the spell name, or a rank/suit label for mana cards.
func (c *Card) Name() string {
	if c.IsSpell() {
		return c.Spell.Name
	}
	return fmt.Sprintf("%d of %s", c.Rank, c.Suit)
}

// HasLimitedCharges reports whether the card is a spell with finite charges.
func (c *Card) HasLimitedCharges() bool {
	return c.IsSpell() && c.Spell.limited
}

// Charges returns the remaining charges of a limited spell, or -1 when unlimited.
func (c *Card) Charges() int {
	if !c.HasLimitedCharges() {
		return -1
	}
	return c.Spell.Counters.Count(counters.CounterTypeCharge)
}

// spendCharge consumes one charge and reports whether the spell is exhausted.
func (c *Card) spendCharge() bool {
	if !c.HasLimitedCharges() {
		return false
	}
	c.Spell.Counters.Remove(counters.CounterTypeCharge, 1)
	return c.Charges() <= 0
}

// castDelay returns how long the cast animation runs before the effect applies.
func (c *Card) castDelay(fallback time.Duration) time.Duration {
	if c.IsSpell() && c.Spell.AnimationTime > 0 {
		return c.Spell.AnimationTime
	}
	return fallback
}

func (c *Card) String() string {
	if c == nil {
		return "<nil>"
	}
	if c.IsSpell() {
		return fmt.Sprintf("%s (%d %s)", c.Spell.Name, c.Rank, c.Suit)
	}
	return c.Name()
}

// sameCard compares two cards by identity, falling back to ID.
func sameCard(a, b *Card) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || a.ID == b.ID
}
