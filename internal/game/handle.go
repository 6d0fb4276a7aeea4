package game

import (
	"github.com/koacards/koa-server-go/internal/game/mana"
	"github.com/koacards/koa-server-go/internal/game/rules"
)

// Handle is the view of a running combat that effects receive. Effects run
// while the combat lock is held, so Handle methods never lock.
type Handle struct {
	c *Combat
}

// Player returns the in-combat player.
func (h *Handle) Player() *Player {
	return h.c.player
}

// Enemy returns the enemy.
func (h *Handle) Enemy() *Enemy {
	return h.c.enemy
}

func (h *Handle) Hand() *Hand {
	return h.c.hand
}

// DrawPile returns the deck.
func (h *Handle) DrawPile() *DrawPile {
	return h.c.deck
}

func (h *Handle) Compost() *CompostPile {
	return h.c.compost
}

func (h *Handle) Trash() *TrashPile {
	return h.c.trash
}

func (h *Handle) Tableau() *Tableau {
	return h.c.tableau
}

func (h *Handle) ManaPools() *ManaPools {
	return h.c.manaPools
}

// Diamonds returns the mana diamond wallet.
func (h *Handle) Diamonds() *mana.Wallet {
	return h.c.diamonds
}

func (h *Handle) RNG() RNG {
	return h.c.rng
}

func (h *Handle) TurnNumber() int {
	return h.c.turn.TurnNumber()
}

// Announce shows a message to the player.
func (h *Handle) Announce(message string) {
	h.c.announce(message)
}

func (h *Handle) PlaySound(sound Sound) {
	h.c.sound(sound)
}

func (h *Handle) Publish(evt rules.Event) {
	h.c.publish(evt)
}

// DrawCards draws count cards into the hand, discarding the current hand to
// compost first unless keepHand is set. It returns the number drawn.
func (h *Handle) DrawCards(count int, keepHand bool) int {
	return h.c.drawCards(count, keepHand)
}

// SummonForPlayer puts a new summon on the player's side.
func (h *Handle) SummonForPlayer(t SummonTemplate) *Summon {
	return h.c.summon(&h.c.player.Combatant, t)
}

// SummonForEnemy puts a new summon on the enemy's side.
func (h *Handle) SummonForEnemy(t SummonTemplate) *Summon {
	return h.c.summon(&h.c.enemy.Combatant, t)
}

// Opponent returns the combatant opposing the given side.
func (h *Handle) Opponent(side Side) *Combatant {
	if side == SideEnemy {
		return &h.c.player.Combatant
	}
	return &h.c.enemy.Combatant
}

func (c *Combat) summon(owner *Combatant, t SummonTemplate) *Summon {
	s := t.New()
	owner.AddSummon(s)
	evt := rules.NewEvent(rules.EventSummonJoined, s.ID.String(), string(c.sideOf(owner)))
	evt.Data = s.Name
	c.publish(evt)
	return s
}

// ActingSide returns the side whose summon or action is running. Spell
// effects run for the player.
func (h *Handle) ActingSide() Side {
	if h.c.actingSide == "" {
		return SidePlayer
	}
	return h.c.actingSide
}

// ActingSummon returns the summon whose effect is running, or nil.
func (h *Handle) ActingSummon() *Summon {
	return h.c.actingSummon
}

// Ally returns the combatant on the given side.
func (h *Handle) Ally(side Side) *Combatant {
	if side == SideEnemy {
		return &h.c.enemy.Combatant
	}
	return &h.c.player.Combatant
}
