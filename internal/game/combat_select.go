package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// AreaKind is the part of the combat board a click landed on.
type AreaKind int

const (
	AreaDeck AreaKind = iota
	AreaCompost
	AreaTrash
	AreaHand
	AreaTableau
	AreaManaPool
	AreaBoard
	AreaBurnCard
	AreaCastCard
)

var areaNames = map[AreaKind]string{
	AreaDeck:     "deck",
	AreaCompost:  "compost",
	AreaTrash:    "trash",
	AreaHand:     "hand",
	AreaTableau:  "tableau",
	AreaManaPool: "mana_pool",
	AreaBoard:    "board",
	AreaBurnCard: "burn_card",
	AreaCastCard: "cast_card",
}

func (a AreaKind) String() string {
	if name, ok := areaNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AREA_%d", int(a))
}

// ParseArea parses an area name as produced by AreaKind.String.
func ParseArea(name string) (AreaKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for area, n := range areaNames {
		if n == name {
			return area, nil
		}
	}
	return 0, fmt.Errorf("unknown area %q", name)
}

// Target is what the player clicked. CardID identifies the card when the click
// landed on one; Index is a positional fallback for hand and tableau clicks and
// is ignored when negative. Column selects the tableau column and Suit the mana pool.
type Target struct {
	Area   AreaKind
	CardID uuid.UUID
	Column int
	Index  int
	Suit   Suit
}

// HandTarget targets a card in the hand.
func HandTarget(card *Card) Target {
	return Target{Area: AreaHand, CardID: card.ID, Index: -1}
}

// TableauTarget targets a card in a tableau column.
func TableauTarget(column int, card *Card) Target {
	t := Target{Area: AreaTableau, Column: column, Index: -1}
	if card != nil {
		t.CardID = card.ID
	}
	return t
}

// ColumnTarget targets the empty space of a tableau column.
func ColumnTarget(column int) Target {
	return Target{Area: AreaTableau, Column: column, Index: -1}
}

// ManaPoolTarget targets the top card of a suit's mana pool.
func ManaPoolTarget(suit Suit) Target {
	return Target{Area: AreaManaPool, Suit: suit, Index: -1}
}

// AreaTarget targets an area with no card, such as the burn or cast zone.
func AreaTarget(area AreaKind) Target {
	return Target{Area: area, Index: -1}
}

// Click handles a click on the board. It reports whether the click changed
// the selection or started an action. Clicks that make no sense in the
// current state are ignored.
func (c *Combat) Click(t Target) bool {
	c.mu.Lock()
	defer c.unlock()

	if !c.acceptingInput() {
		return false
	}

	switch t.Area {
	case AreaHand:
		card, ok := c.resolveInGroup(&c.hand.CardGroup, t)
		if !ok {
			return false
		}
		return c.toggleSelection(card)
	case AreaManaPool:
		pool := c.manaPools.Pool(t.Suit)
		if pool == nil {
			return false
		}
		top := pool.Top()
		if t.CardID != uuid.Nil && (top == nil || top.ID != t.CardID) {
			return false
		}
		return c.toggleSelection(top)
	case AreaTableau:
		return c.clickTableau(t)
	case AreaBoard:
		return c.deselect()
	case AreaBurnCard:
		return c.burnSelected()
	case AreaCastCard:
		return c.castSelected()
	case AreaDeck, AreaCompost, AreaTrash:
		return false
	default:
		c.logger.Debug("click on unknown area", zap.Stringer("area", t.Area))
		return false
	}
}

// resolveInGroup finds the clicked card in a group. ok is false when the
// target names a card the group does not hold.
func (c *Combat) resolveInGroup(g *CardGroup, t Target) (*Card, bool) {
	if t.CardID != uuid.Nil {
		card := g.Find(t.CardID)
		return card, card != nil
	}
	if t.Index >= 0 {
		card := g.At(t.Index)
		return card, card != nil
	}
	return nil, true
}

func (c *Combat) clickTableau(t Target) bool {
	column := c.tableau.Column(t.Column)
	if column == nil {
		return false
	}
	card, ok := c.resolveInGroup(column, t)
	if !ok {
		return false
	}

	if c.selected == nil {
		if card == nil {
			return false
		}
		return c.toggleSelection(card)
	}
	if sameCard(card, c.selected) {
		return c.deselect()
	}
	if card == nil && !column.IsEmpty() {
		return c.deselect()
	}
	if card != nil && !sameCard(card, column.Last()) {
		return false
	}
	if !c.canPlaceOnColumn(c.selected, t.Column) {
		return false
	}
	c.schedulePlacement(c.selected, t.Column)
	return true
}

// toggleSelection applies the selection rules to a click on card.
func (c *Combat) toggleSelection(card *Card) bool {
	if card.IsDummy() {
		return c.deselect()
	}
	if sameCard(card, c.selected) {
		return c.deselect()
	}
	if !card.Revealed || c.isInFlight(card) {
		return false
	}
	c.selected = card
	c.notify()
	return true
}

func (c *Combat) deselect() bool {
	if c.selected == nil {
		return false
	}
	c.selected = nil
	c.notify()
	return true
}

// CanPlaceSelectedCardInTableau reports whether the selected card may be
// placed on the given column.
func (c *Combat) CanPlaceSelectedCardInTableau(column int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acceptingInput() && c.canPlaceOnColumn(c.selected, column)
}

// canPlaceOnColumn reports whether card may move onto the bottom of column.
func (c *Combat) canPlaceOnColumn(card *Card, column int) bool {
	target := c.tableau.Column(column)
	if target == nil || card == nil || !card.Revealed || c.isInFlight(card) {
		return false
	}
	if target.Contains(card) {
		return false
	}
	if bottom := target.Last(); bottom != nil {
		if bottom.Suit == card.Suit || card.Rank != bottom.Rank-1 {
			return false
		}
	}

	switch {
	case c.hand.Contains(card):
		return true
	case c.manaPools.Locate(card) != nil:
		return true
	}

	srcIdx, idx := c.tableau.Locate(card)
	if srcIdx < 0 {
		return false
	}
	source := c.tableau.Column(srcIdx)
	if idx == source.Size()-1 {
		return true
	}
	return isValidRun(source.Cards()[idx:])
}

// schedulePlacement moves card onto column once the move animation ends.
func (c *Combat) schedulePlacement(card *Card, column int) {
	c.markInFlight(card)
	c.selected = nil
	c.sound(SoundMove)
	c.notify()

	c.after(c.cfg.MoveDelay, func() {
		if !c.isInFlight(card) {
			return
		}
		c.clearInFlight(card)
		if !c.acceptingInput() || !c.canPlaceOnColumn(card, column) {
			c.logger.Debug("placement no longer legal",
				zap.String("card", card.String()),
				zap.Int("column", column),
			)
			c.notify()
			return
		}
		c.moveToColumn(card, column)
		c.notify()
	})
}

// moveToColumn relocates card, and any run below it, onto column.
func (c *Combat) moveToColumn(card *Card, column int) {
	target := c.tableau.Column(column)
	from := "hand"

	switch {
	case c.hand.Remove(card):
		target.Add(card)
	case c.manaPools.Locate(card) != nil:
		pool := c.manaPools.Locate(card)
		from = "mana_pool:" + pool.Suit().String()
		pool.Remove(card)
		target.Add(card)
	default:
		srcIdx, idx := c.tableau.Locate(card)
		if srcIdx < 0 {
			panic(fmt.Sprintf("card %s selected for placement is in no pile", card.ID))
		}
		from = fmt.Sprintf("tableau:%d", srcIdx)
		source := c.tableau.Column(srcIdx)
		run := source.Cards()[idx:]
		for _, moved := range run {
			source.Remove(moved)
		}
		target.Add(run...)
	}
	c.tableau.RevealBottoms()

	evt := rules.NewEvent(rules.EventCardMoved, card.ID.String(), from)
	evt.Data = fmt.Sprintf("tableau:%d", column)
	c.publish(evt)
}
