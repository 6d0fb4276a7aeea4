package game

import (
	"fmt"

	"github.com/koacards/koa-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const redealMessage = "No cards left to draw and no reshuffles remain. Redeal the board?"

// drawCards moves up to count cards from the deck into the hand face up.
func (c *Combat) drawCards(count int, keepHand bool) int {
	if !keepHand {
		c.discardHand()
	}
	drawn := c.deck.DrawMultiple(count)
	for _, card := range drawn {
		card.Revealed = true
	}
	c.hand.Add(drawn...)
	if len(drawn) > 0 {
		c.sound(SoundDraw)
		c.publish(rules.NewEventWithAmount(rules.EventCardsDrawn, string(SidePlayer), "", len(drawn)))
	}
	return len(drawn)
}

// discardHand moves every hand card to compost.
func (c *Combat) discardHand() {
	if c.selected != nil && c.hand.Contains(c.selected) {
		c.selected = nil
	}
	discarded := c.hand.takeAll()
	if len(discarded) == 0 {
		return
	}
	c.compost.Add(discarded...)
	c.publish(rules.NewEventWithAmount(rules.EventHandDiscarded, string(SidePlayer), "", len(discarded)))
}

func (c *Combat) startTurn(keepHand bool) {
	c.drawCards(c.profile.handSize(), keepHand)
	c.player.Block = 0
	c.enemy.LoadActions(c.rng)
	c.publish(rules.NewEventWithAmount(rules.EventTurnStarted, string(SidePlayer), "", c.turn.TurnNumber()))
}

// EndTurn ends the player's turn and resolves summons and the enemy turn
// with pacing delays between steps. It reports whether resolution started.
// With an empty deck and no reshuffles left it asks for confirmation to
// redeal instead, leaving every pile untouched.
func (c *Combat) EndTurn() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.acceptingInput() {
		return false
	}

	if c.deck.IsEmpty() && c.reshuffles == 0 {
		c.requestRedealConfirmation()
		return false
	}

	c.beginProcessing()
	c.selected = nil
	c.discardHand()
	c.mustFire(rules.TransitionEndTurn)
	c.publish(rules.NewEventWithAmount(rules.EventTurnEnded, string(SidePlayer), "", c.turn.TurnNumber()))
	c.notify()

	c.logger.Info("turn ended", zap.Int("turn", c.turn.TurnNumber()))
	c.resolvePlayerSummons()
	return true
}

// beginProcessing marks a turn resolution in flight. Pending card animations
// are cancelled.
func (c *Combat) beginProcessing() {
	c.processing = true
	c.turnDone = make(chan struct{})
	clear(c.inFlight)
	c.autoBurning = false
}

func (c *Combat) finishProcessing() {
	if !c.processing {
		return
	}
	c.processing = false
	close(c.turnDone)
	c.turnDone = nil
}

// pace runs steps one at a time, each after the pacing delay. A step that
// returns false ends the sequence without running done.
func (c *Combat) pace(steps []func() bool, done func()) {
	if len(steps) == 0 {
		done()
		return
	}
	c.after(c.cfg.PacingDelay, func() {
		if !steps[0]() {
			c.notify()
			return
		}
		c.notify()
		c.pace(steps[1:], done)
	})
}

func (c *Combat) summonSteps(owner *Combatant) []func() bool {
	side := c.sideOf(owner)
	steps := make([]func() bool, 0, len(owner.Summons))
	for _, s := range owner.Summons {
		steps = append(steps, func() bool {
			if !owner.HasSummon(s) {
				return true
			}
			c.act(side, s, s.Effect)
			evt := rules.NewEvent(rules.EventSummonActed, s.ID.String(), string(side))
			evt.Data = s.Name
			c.publish(evt)
			return !c.checkDefeat()
		})
	}
	return steps
}

// act runs effect on behalf of side, exposing the acting summon to it.
func (c *Combat) act(side Side, s *Summon, effect Effect) {
	if effect == nil {
		return
	}
	prevSide, prevSummon := c.actingSide, c.actingSummon
	c.actingSide, c.actingSummon = side, s
	defer func() {
		c.actingSide, c.actingSummon = prevSide, prevSummon
	}()
	effect(c.handle)
}

func (c *Combat) resolvePlayerSummons() {
	c.pace(c.summonSteps(&c.player.Combatant), c.resolveEnemyTurn)
}

func (c *Combat) resolveEnemyTurn() {
	c.mustFire(rules.TransitionResolveEnemy)
	c.enemy.Block = 0

	actions := append([]*EnemyAction(nil), c.enemy.Impending...)
	steps := make([]func() bool, 0, len(actions))
	for i, action := range actions {
		steps = append(steps, func() bool {
			c.enemy.Impending = append(c.enemy.Impending[:0], actions[i+1:]...)
			c.act(SideEnemy, nil, action.Effect)
			evt := rules.NewEvent(rules.EventEnemyActed, string(SidePlayer), string(SideEnemy))
			evt.Data = action.Name
			c.publish(evt)
			return !c.checkDefeat()
		})
	}
	c.notify()
	// Enemy summons are collected after the actions so that summons joining
	// during the enemy's turn also act.
	c.pace(steps, func() {
		c.pace(c.summonSteps(&c.enemy.Combatant), c.finishTurn)
	})
}

// finishTurn reshuffles if the deck ran out and starts the next turn.
func (c *Combat) finishTurn() {
	if c.deck.IsEmpty() && c.reshuffles > 0 {
		c.reshuffle()
	}
	c.mustFire(rules.TransitionNextTurn)
	c.startTurn(false)
	c.finishProcessing()
	c.notify()
	c.logger.Info("turn started", zap.Int("turn", c.turn.TurnNumber()))
}

func (c *Combat) reshuffle() {
	recycled := c.compost.RecycleInto(c.deck)
	c.deck.Shuffle(c.rng)
	c.reshuffles--
	c.sound(SoundShuffle)
	c.publish(rules.NewEventWithAmount(rules.EventReshuffled, string(SidePlayer), "", recycled))
	c.logger.Debug("reshuffled",
		zap.Int("recycled", recycled),
		zap.Int("reshuffles_left", c.reshuffles),
	)
}

func (c *Combat) requestRedealConfirmation() {
	c.mustFire(rules.TransitionAwaitConfirmation)
	c.selected = nil
	c.publish(rules.NewEvent(rules.EventConfirmRequired, string(SidePlayer), ""))
	c.notify()

	if c.confirmer == nil {
		c.logger.Warn("redeal confirmation needed but no confirmer is set")
		return
	}
	confirmer, version := c.confirmer, c.scheduler.Generation()
	c.later(func() {
		confirmer.RequestConfirmation(redealMessage, func() {
			c.confirmRedeal(version)
		})
	})
}

// confirmRedeal accepts the confirmation requested under version. The
// Confirmer reaches it only through the onConfirm callback.
func (c *Combat) confirmRedeal(version uint64) bool {
	c.mu.Lock()
	defer c.unlock()
	if c.scheduler.Generation() != version || !c.turn.Is(rules.StateAwaitingConfirmation) {
		return false
	}
	c.redeal()
	return true
}

// DeclineRedeal rejects a pending redeal confirmation and returns control to the player.
func (c *Combat) DeclineRedeal() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.turn.Is(rules.StateAwaitingConfirmation) {
		return false
	}
	c.mustFire(rules.TransitionDecline)
	c.notify()
	return true
}

// Redeal gathers every card back into the deck, deals a fresh tableau and
// resolves the rest of the turn.
func (c *Combat) Redeal() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.started || c.processing {
		return false
	}
	if !c.turn.Is(rules.StatePlayerTurn) && !c.turn.Is(rules.StateAwaitingConfirmation) {
		return false
	}
	c.redeal()
	return true
}

func (c *Combat) redeal() {
	c.beginProcessing()
	c.selected = nil
	c.mustFire(rules.TransitionRedeal)

	c.compost.Add(c.hand.takeAll()...)
	c.compost.Add(c.tableau.takeAll()...)
	c.compost.Add(c.manaPools.takeAll()...)
	recycled := c.compost.RecycleInto(c.deck)
	c.deck.Shuffle(c.rng)
	c.tableau.Deal(c.deck)
	c.reshuffles = c.cfg.Reshuffles

	c.sound(SoundShuffle)
	c.publish(rules.NewEventWithAmount(rules.EventRedealt, string(SidePlayer), "", recycled))
	c.notify()
	c.logger.Info("redealt", zap.Int("cards", recycled))

	c.resolvePlayerSummons()
}

// checkDefeat ends the combat if either side is dead. The enemy is checked
// first. It reports whether the combat is over.
func (c *Combat) checkDefeat() bool {
	if c.turn.Current().Terminal() {
		return true
	}
	switch {
	case c.enemy.IsDead():
		c.defeatEnemy()
	case c.player.IsDead():
		c.defeatPlayer()
	default:
		return false
	}
	return true
}

func (c *Combat) defeatEnemy() {
	c.mustFire(rules.TransitionEnemyDefeated)
	c.player.syncHealth()
	c.selected = nil
	c.finishProcessing()

	name := c.enemy.Name
	c.publish(rules.NewEvent(rules.EventEnemyDefeated, string(SideEnemy), string(SidePlayer)))
	c.announce(fmt.Sprintf("%s has been defeated!", name))
	c.sound(SoundVictory)
	if hook := c.hooks.OnEnemyDefeated; hook != nil {
		c.later(func() { hook(name) })
	}
	c.notify()
	c.logger.Info("enemy defeated",
		zap.String("enemy", name),
		zap.Int("turn", c.turn.TurnNumber()),
		zap.Int("player_health", c.player.Health),
	)
}

func (c *Combat) defeatPlayer() {
	c.mustFire(rules.TransitionPlayerDefeated)
	c.player.syncHealth()
	c.selected = nil
	c.finishProcessing()

	c.publish(rules.NewEvent(rules.EventPlayerDefeated, string(SidePlayer), string(SideEnemy)))
	c.announce("You have been defeated.")
	c.sound(SoundDefeat)
	if hook := c.hooks.OnPlayerDefeated; hook != nil {
		c.later(hook)
	}
	c.notify()
	c.logger.Info("player defeated",
		zap.String("enemy", c.enemy.Name),
		zap.Int("turn", c.turn.TurnNumber()),
	)
}

// ContinueAfterVictory passes control to the continue hook once the enemy is dead.
func (c *Combat) ContinueAfterVictory() bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.turn.Is(rules.StateEnemyDefeated) {
		return false
	}
	if hook := c.hooks.OnEnemyDefeatedContinue; hook != nil {
		c.later(hook)
	}
	return true
}
