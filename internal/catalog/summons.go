package catalog

import (
	"github.com/koacards/koa-server-go/internal/game"
)

// Summon keys.
const (
	SummonCollaborator    = "collaborator"
	SummonFireSalamander  = "fireSalamander"
	SummonStoneWombat     = "stoneWombat"
	SummonBladeQuokka     = "bladeQuokka"
	SummonHealingPlatypus = "healingPlatypus"
	SummonForestGuardian  = "forestGuardian"
	SummonRat             = "rat"
)

// strike deals damage to whoever opposes the acting side.
func strike(amount int, types game.DamageType) game.Effect {
	return func(h *game.Handle) {
		h.Opponent(h.ActingSide()).TakeDamage(amount, types)
	}
}

var summons = map[string]game.SummonTemplate{
	SummonCollaborator: {
		Name:        "Collaborator",
		Description: "Sympathetic to Koa's cause.",
		MaxHealth:   1,
		Race:        game.RaceKoala,
	},
	SummonFireSalamander: {
		Name:        "Fire Salamander",
		Description: "Deals 2 damage to the enemy each turn.",
		MaxHealth:   3,
		Power:       2,
		Race:        game.RaceSalamander,
		Effect:      strike(2, game.DamagePhysical),
	},
	SummonStoneWombat: {
		Name:        "Stone Wombat",
		Description: "Grants 4 block each turn.",
		MaxHealth:   8,
		Race:        game.RaceWombat,
		Effect: func(h *game.Handle) {
			h.Ally(h.ActingSide()).GainBlock(4)
		},
	},
	SummonBladeQuokka: {
		Name:        "Blade Quokka",
		Description: "Deals 5 damage to the enemy each turn.",
		MaxHealth:   4,
		Power:       5,
		Race:        game.RaceQuokka,
		Effect:      strike(5, game.DamagePhysical),
	},
	SummonHealingPlatypus: {
		Name:        "Healing Platypus",
		Description: "Restores 3 health each turn.",
		MaxHealth:   5,
		Race:        game.RacePlatypus,
		Effect: func(h *game.Handle) {
			h.Ally(h.ActingSide()).GainHealth(3)
		},
	},
	SummonForestGuardian: {
		Name:        "Forest Guardian",
		Description: "Grants 3 block and deals 2 damage to the enemy each turn.",
		MaxHealth:   10,
		Power:       2,
		Race:        game.RaceFlyingSquirrel,
		Effect: func(h *game.Handle) {
			side := h.ActingSide()
			h.Ally(side).GainBlock(3)
			h.Opponent(side).TakeDamage(2, game.DamagePhysical)
		},
	},
	SummonRat: {
		Name:        "Rat",
		Description: "Bites for 1 damage each turn.",
		MaxHealth:   2,
		Power:       1,
		Race:        game.RaceRat,
		Effect:      strike(1, game.DamagePhysical),
	},
}

// Summon returns the summon template registered under key.
func Summon(key string) (game.SummonTemplate, bool) {
	t, ok := summons[key]
	return t, ok
}

func mustSummon(key string) game.SummonTemplate {
	t, ok := summons[key]
	if !ok {
		panic("unknown summon " + key)
	}
	return t
}
