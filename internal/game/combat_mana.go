package game

import (
	"fmt"

	"github.com/koacards/koa-server-go/internal/game/mana"
	"github.com/koacards/koa-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// CanBurnSelectedCard reports whether the selected card may be burned.
func (c *Combat) CanBurnSelectedCard() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acceptingInput() && c.canBurn(c.selected)
}

// CanCastSelectedCard reports whether the selected card may be cast.
func (c *Combat) CanCastSelectedCard() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acceptingInput() && c.canCast(c.selected)
}

// BurnSelectedCard burns the selected card into its mana pool once the burn
// animation ends. It reports whether the burn was started.
func (c *Combat) BurnSelectedCard() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.acceptingInput() {
		return false
	}
	return c.burnSelected()
}

// CastSelectedCard casts the selected spell once its animation ends.
// It reports whether the cast was started.
func (c *Combat) CastSelectedCard() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.acceptingInput() {
		return false
	}
	return c.castSelected()
}

// playable reports whether card sits where it can be burned or cast from.
func (c *Combat) playable(card *Card) bool {
	return c.hand.Contains(card) || c.tableau.IsBottom(card)
}

func (c *Combat) canBurn(card *Card) bool {
	if card == nil || !card.Revealed || card.IsSpell() || c.isInFlight(card) {
		return false
	}
	if !c.playable(card) {
		return false
	}
	pool := c.manaPools.Pool(card.Suit)
	return pool != nil && pool.HasEnoughManaForBurn(card.Rank)
}

func (c *Combat) castCost(card *Card) mana.CastCost {
	poolSize := 0
	if pool := c.manaPools.Pool(card.Suit); pool != nil {
		poolSize = pool.Size()
	}
	return mana.NewCastCost(card.Rank, poolSize, card.Suit.IsDebug())
}

func (c *Combat) canCast(card *Card) bool {
	if !card.IsSpell() || !card.Revealed || c.isInFlight(card) {
		return false
	}
	if !c.playable(card) {
		return false
	}
	return mana.CanPay(c.castCost(card), c.diamonds)
}

func (c *Combat) burnSelected() bool {
	card := c.selected
	if !c.canBurn(card) {
		return false
	}
	c.selected = nil
	c.scheduleBurn(card, nil)
	return true
}

// scheduleBurn burns card after the burn delay. next, if set, runs after the
// burn attempt whether or not it succeeded.
func (c *Combat) scheduleBurn(card *Card, next func()) {
	c.markInFlight(card)
	c.sound(SoundBurn)
	c.notify()

	c.after(c.cfg.BurnDelay, func() {
		if !c.isInFlight(card) {
			return
		}
		c.clearInFlight(card)
		if c.acceptingInput() && c.canBurn(card) {
			c.burn(card)
		} else {
			c.logger.Debug("burn no longer legal", zap.String("card", card.String()))
		}
		c.notify()
		if next != nil {
			next()
		}
	})
}

// burn moves card from its source into its suit's mana pool.
func (c *Combat) burn(card *Card) {
	c.removeFromPlay(card)
	c.manaPools.Pool(card.Suit).Add(card)

	evt := rules.NewEventWithAmount(rules.EventCardBurned, card.ID.String(), string(SidePlayer), card.Rank)
	evt.Data = card.Suit.String()
	c.publish(evt)
}

// removeFromPlay takes card out of the hand or the bottom of its column.
func (c *Combat) removeFromPlay(card *Card) {
	if c.hand.Remove(card) {
		return
	}
	col, idx := c.tableau.Locate(card)
	if col < 0 || idx != c.tableau.Column(col).Size()-1 {
		panic("card " + card.ID.String() + " is not playable")
	}
	c.tableau.Column(col).Remove(card)
	c.tableau.RevealBottoms()
}

func (c *Combat) castSelected() bool {
	card := c.selected
	if !c.canCast(card) {
		return false
	}
	c.selected = nil
	c.markInFlight(card)
	c.sound(SoundCast)
	c.notify()

	c.after(card.castDelay(c.cfg.CastDelay), func() {
		if !c.isInFlight(card) {
			return
		}
		c.clearInFlight(card)
		if !c.acceptingInput() || !c.canCast(card) {
			c.logger.Debug("cast no longer legal", zap.String("card", card.String()))
			c.notify()
			return
		}
		c.cast(card)
		c.notify()
	})
	return true
}

// cast pays for card, runs its effect and discards it.
func (c *Combat) cast(card *Card) {
	cost := c.castCost(card)
	payment := mana.CalculatePayment(cost, c.diamonds)
	if !payment.Success {
		c.logger.Debug("cast payment failed",
			zap.String("card", card.String()),
			zap.String("reason", payment.Reason),
		)
		return
	}
	if err := mana.ExecutePayment(payment.Plan, c.diamonds); err != nil {
		c.logger.Error("cast payment failed after validation", zap.Error(err))
		return
	}
	if pool := c.manaPools.Pool(card.Suit); pool != nil {
		c.compost.Add(pool.popN(payment.Plan.PoolCards)...)
	}

	// The card is in no pile while its effect runs, so effects that discard
	// or redraw the hand cannot move it twice.
	c.removeFromPlay(card)
	if card.Spell.Effect != nil {
		card.Spell.Effect(c.handle)
	}

	if card.HasLimitedCharges() {
		exhausted := card.spendCharge()
		c.publish(rules.NewEventWithAmount(rules.EventChargeSpent, card.ID.String(), string(SidePlayer), card.Charges()))
		if exhausted {
			c.trash.Add(card)
			c.publish(rules.NewEvent(rules.EventCardTrashed, card.ID.String(), string(SidePlayer)))
		} else {
			c.compost.Add(card)
		}
	} else {
		c.compost.Add(card)
	}

	evt := rules.NewEventWithAmount(rules.EventSpellCast, card.ID.String(), string(SidePlayer), card.Rank)
	evt.Data = card.Spell.Name
	evt.Metadata["diamonds"] = fmt.Sprint(payment.Plan.Diamonds)
	evt.Metadata["pool_cards"] = fmt.Sprint(payment.Plan.PoolCards)
	c.publish(evt)

	c.logger.Debug("spell cast",
		zap.String("card", card.String()),
		zap.Int("diamonds", payment.Plan.Diamonds),
		zap.Int("pool_cards", payment.Plan.PoolCards),
	)
	c.checkDefeat()
}

// MovableToMana returns the cards that could be burned right now.
func (c *Combat) MovableToMana() []*Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.movableToMana()
}

// movableToMana lists burnable tableau bottoms in column order, then burnable hand cards.
func (c *Combat) movableToMana() []*Card {
	var movable []*Card
	for _, card := range c.tableau.Bottoms() {
		if c.canBurn(card) {
			movable = append(movable, card)
		}
	}
	for _, card := range c.hand.Cards() {
		if c.canBurn(card) {
			movable = append(movable, card)
		}
	}
	return movable
}

// AutoBurnAll burns every burnable card one at a time, re-evaluating after
// each burn since filling a pool can make the next rank burnable.
// It reports whether anything was burnable.
func (c *Combat) AutoBurnAll() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.acceptingInput() || c.autoBurning {
		return false
	}
	if len(c.movableToMana()) == 0 {
		return false
	}
	c.autoBurning = true
	c.selected = nil
	c.autoBurnNext()
	return true
}

func (c *Combat) autoBurnNext() {
	var movable []*Card
	if c.acceptingInput() {
		movable = c.movableToMana()
	}
	if len(movable) == 0 {
		c.autoBurning = false
		c.notify()
		return
	}
	c.scheduleBurn(movable[0], c.autoBurnNext)
}
