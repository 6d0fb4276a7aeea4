package catalog

import (
	"sort"
	"strings"

	"github.com/koacards/koa-server-go/internal/game"
)

// Spell set names.
const (
	SetStarter = "starter"
	SetGeneral = "general"
	SetDebug   = "debug"
)

var shot = game.CardSpec{
	Rank:        3,
	Suit:        game.SuitWood,
	Name:        "Shot",
	Description: "Deals 5 ranged damage, plus your Agility.",
	Keywords:    keywords(KeywordRanged),
	Effect: func(h *game.Handle) {
		h.Enemy().TakeDamage(5+h.Player().Agility, game.DamageRanged)
	},
}

var scorch = game.CardSpec{
	Rank:        5,
	Suit:        game.SuitFire,
	Name:        "Scorch",
	Description: "Deals 8 magic damage, plus your Arcane.",
	Charges:     1,
	Keywords:    keywords(KeywordMagic, KeywordCharges),
	Effect: func(h *game.Handle) {
		h.Enemy().TakeDamage(8+h.Player().Arcane, game.DamageMagic)
	},
}

var shield = game.CardSpec{
	Rank:        2,
	Suit:        game.SuitEarth,
	Name:        "Shield",
	Description: "Gain 4 block, plus your Armor.",
	Keywords:    keywords(KeywordBlock),
	Effect: func(h *game.Handle) {
		p := h.Player()
		p.GainBlock(4 + p.Armor)
	},
}

var slash = game.CardSpec{
	Rank:        1,
	Suit:        game.SuitMetal,
	Name:        "Slash",
	Description: "Deals 3 damage, plus your Attack.",
	Effect: func(h *game.Handle) {
		h.Enemy().TakeDamage(3+h.Player().Attack, game.DamagePhysical)
	},
}

var study = game.CardSpec{
	Rank:        4,
	Suit:        game.SuitWater,
	Name:        "Study",
	Description: "Draw 3 cards.",
	Keywords:    keywords(KeywordDraw),
	Effect: func(h *game.Handle) {
		h.DrawCards(3, true)
	},
}

var parry = game.CardSpec{
	Rank:        1,
	Suit:        game.SuitWood,
	Name:        "Parry the Platypus",
	Description: "Gain 2 block, plus your Agility.",
	Keywords:    keywords(KeywordBlock),
	Effect: func(h *game.Handle) {
		p := h.Player()
		p.GainBlock(2 + p.Agility)
	},
}

var manaBurn = game.CardSpec{
	Rank:        3,
	Suit:        game.SuitFire,
	Name:        "Mana Burn",
	Description: "Deals 1 magic damage for each card in your mana pools.",
	Keywords:    keywords(KeywordMagic),
	Effect: func(h *game.Handle) {
		total := 0
		for _, pool := range h.ManaPools().All() {
			total += pool.Size()
		}
		h.Enemy().TakeDamage(total, game.DamageMagic)
	},
}

var koallaborator = game.CardSpec{
	Rank:        1,
	Suit:        game.SuitMetal,
	Name:        "Koallaborator",
	Description: "Summons a collaborator to protect you.",
	Keywords:    keywords(KeywordSummon),
	Effect: func(h *game.Handle) {
		h.SummonForPlayer(mustSummon(SummonCollaborator))
	},
}

var shieldBash = game.CardSpec{
	Rank:        2,
	Suit:        game.SuitEarth,
	Name:        "Shield Bash",
	Description: "Deals damage equal to your block.",
	Keywords:    keywords(KeywordBlock),
	Effect: func(h *game.Handle) {
		h.Enemy().TakeDamage(h.Player().Block, game.DamagePhysical)
	},
}

var bill = game.CardSpec{
	Rank:        1,
	Suit:        game.SuitWater,
	Name:        "Bill",
	Description: "Draw 2 cards.",
	Keywords:    keywords(KeywordDraw),
	Effect: func(h *game.Handle) {
		h.DrawCards(2, true)
	},
}

var debugKill = game.CardSpec{
	Rank:        0,
	Suit:        game.SuitKoala,
	Name:        "Debug Kill",
	Description: "Kills the enemy. (Debug)",
	Effect: func(h *game.Handle) {
		e := h.Enemy()
		e.TakeDamage(e.Health, game.DamageRanged|game.DamageMagic)
	},
}

var debugHeal = game.CardSpec{
	Rank:        0,
	Suit:        game.SuitKoala,
	Name:        "Debug Heal",
	Description: "Fully heals the player. (Debug)",
	Effect: func(h *game.Handle) {
		p := h.Player()
		p.GainHealth(p.MaxHealth)
	},
}

var spellSets = map[string][]game.CardSpec{
	SetStarter: {shot, shot, scorch, scorch, slash, slash, shield, shield, study, study},
	SetGeneral: {parry, manaBurn, koallaborator, shieldBash, bill},
	SetDebug:   {debugKill, debugHeal},
}

var spellsByName = indexSpells()

func indexSpells() map[string]game.CardSpec {
	index := make(map[string]game.CardSpec)
	for _, set := range spellSets {
		for _, spec := range set {
			index[strings.ToLower(spec.Name)] = spec
		}
	}
	return index
}

// SpellSet returns a copy of the named set, with duplicates where the set
// holds more than one copy of a spell.
func SpellSet(name string) []game.CardSpec {
	return append([]game.CardSpec(nil), spellSets[name]...)
}

// Spell looks a spell up by name, ignoring case.
func Spell(name string) (game.CardSpec, bool) {
	spec, ok := spellsByName[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

// SpellNames returns every known spell name in sorted order.
func SpellNames() []string {
	names := make([]string, 0, len(spellsByName))
	for _, spec := range spellsByName {
		names = append(names, spec.Name)
	}
	sort.Strings(names)
	return names
}
