package catalog

import (
	"fmt"
	"strings"

	"github.com/koacards/koa-server-go/internal/game"
)

// Enemy action keys.
const (
	ActionDoNothing          = "doNothing"
	ActionWeakAttack         = "weakAttack"
	ActionStrongAttack       = "strongAttack"
	ActionWeakMagicAttack    = "weakMagicAttack"
	ActionStrongMagicAttack  = "strongMagicAttack"
	ActionWeakRangedAttack   = "weakRangedAttack"
	ActionStrongRangedAttack = "strongRangedAttack"
	ActionBlock              = "block"
	ActionBuff               = "buff"
	ActionHeal               = "heal"
	ActionSummonRat          = "summonRat"
	ActionHaste              = "haste"
)

// attack hits the player for base plus the enemy's attack bonus.
func attack(base int, types game.DamageType) game.Effect {
	return func(h *game.Handle) {
		h.Opponent(h.ActingSide()).TakeDamage(base+h.Enemy().AttackBonus(), types)
	}
}

var enemyActions = map[string]*game.EnemyAction{
	ActionDoNothing: {
		Name:        "Do Nothing",
		Description: "The enemy does nothing.",
	},
	ActionWeakAttack: {
		Name:        "Weak Attack",
		Description: "The enemy attacks you for 1 damage, plus its attack bonus.",
		Effect:      attack(1, game.DamagePhysical),
	},
	ActionStrongAttack: {
		Name:        "Strong Attack",
		Description: "The enemy attacks you for 3 damage, plus its attack bonus.",
		Effect:      attack(3, game.DamagePhysical),
	},
	ActionWeakMagicAttack: {
		Name:        "Weak Magic Attack",
		Description: "The enemy casts a spell at you for 1 magic damage, plus its attack bonus.",
		Effect:      attack(1, game.DamageMagic),
	},
	ActionStrongMagicAttack: {
		Name:        "Strong Magic Attack",
		Description: "The enemy casts a spell at you for 3 magic damage, plus its attack bonus.",
		Effect:      attack(3, game.DamageMagic),
	},
	ActionWeakRangedAttack: {
		Name:        "Weak Ranged Attack",
		Description: "The enemy shoots you for 1 ranged damage, plus its attack bonus.",
		Effect:      attack(1, game.DamageRanged),
	},
	ActionStrongRangedAttack: {
		Name:        "Strong Ranged Attack",
		Description: "The enemy shoots you for 3 ranged damage, plus its attack bonus.",
		Effect:      attack(3, game.DamageRanged),
	},
	ActionBlock: {
		Name:        "Block",
		Description: "The enemy blocks for 2, plus its defense bonus.",
		Effect: func(h *game.Handle) {
			e := h.Enemy()
			e.GainBlock(2 + e.DefenseBonus())
		},
	},
	ActionBuff: {
		Name:        "Buff",
		Description: "The enemy buffs itself, increasing its attack and defense bonuses by 1.",
		Effect: func(h *game.Handle) {
			h.Enemy().Buff(1)
		},
	},
	ActionHeal: {
		Name:        "Heal",
		Description: "The enemy heals itself for 2 health.",
		Effect: func(h *game.Handle) {
			h.Enemy().GainHealth(2)
		},
	},
	ActionSummonRat: {
		Name:        "Summon Rat",
		Description: "The enemy calls a rat to fight for it.",
		Effect: func(h *game.Handle) {
			h.SummonForEnemy(mustSummon(SummonRat))
		},
	},
	ActionHaste: {
		Name:        "Haste",
		Description: "The enemy takes one more action on each following turn.",
		Effect: func(h *game.Handle) {
			h.Enemy().Hasten(1)
		},
	},
}

// EnemyAction returns the action registered under key.
func EnemyAction(key string) (*game.EnemyAction, bool) {
	a, ok := enemyActions[key]
	return a, ok
}

type actionCount struct {
	key   string
	count int
}

type enemyEntry struct {
	name        string
	description string
	health      int
	deck        []actionCount
}

// roster lists the enemies in the order they are met.
var roster = []enemyEntry{
	{
		name:        "Platypus",
		description: "A really weird looking animal.",
		health:      10,
		deck: []actionCount{
			{ActionDoNothing, 2},
			{ActionWeakAttack, 3},
			{ActionHaste, 1},
		},
	},
	{
		name:   "Dwambat",
		health: 15,
		deck: []actionCount{
			{ActionDoNothing, 2},
			{ActionWeakAttack, 4},
			{ActionBlock, 3},
			{ActionSummonRat, 2},
			{ActionHaste, 1},
		},
	},
	{
		name:   "Gnokka",
		health: 20,
		deck: []actionCount{
			{ActionDoNothing, 2},
			{ActionWeakMagicAttack, 3},
			{ActionStrongMagicAttack, 3},
			{ActionBuff, 2},
			{ActionSummonRat, 2},
			{ActionHaste, 1},
		},
	},
	{
		name:   "Squirrelf",
		health: 25,
		deck: []actionCount{
			{ActionWeakRangedAttack, 3},
			{ActionStrongRangedAttack, 4},
			{ActionBlock, 3},
			{ActionBuff, 2},
			{ActionHeal, 2},
			{ActionSummonRat, 2},
			{ActionHaste, 2},
		},
	},
	{
		name:   "Dingorc",
		health: 35,
		deck: []actionCount{
			{ActionDoNothing, 1},
			{ActionWeakAttack, 2},
			{ActionStrongAttack, 5},
			{ActionBlock, 4},
			{ActionBuff, 3},
			{ActionHeal, 3},
			{ActionSummonRat, 2},
			{ActionHaste, 2},
		},
	},
}

func (e enemyEntry) template() *game.EnemyTemplate {
	t := &game.EnemyTemplate{
		Name:        e.name,
		Description: e.description,
		MaxHealth:   e.health,
	}
	for _, ac := range e.deck {
		action := enemyActions[ac.key]
		for i := 0; i < ac.count; i++ {
			t.Deck = append(t.Deck, action)
		}
	}
	return t
}

// Enemy returns a fresh template for the named enemy, ignoring case.
func Enemy(name string) (*game.EnemyTemplate, error) {
	for _, e := range roster {
		if strings.EqualFold(e.name, strings.TrimSpace(name)) {
			return e.template(), nil
		}
	}
	return nil, fmt.Errorf("unknown enemy %q", name)
}

// EnemyAt returns the enemy met at the given stage, starting from zero.
// Stages past the end of the roster repeat the last enemy.
func EnemyAt(stage int) *game.EnemyTemplate {
	stage = max(0, min(stage, len(roster)-1))
	return roster[stage].template()
}

// EnemyNames returns the roster in order.
func EnemyNames() []string {
	names := make([]string, len(roster))
	for i, e := range roster {
		names[i] = e.name
	}
	return names
}
