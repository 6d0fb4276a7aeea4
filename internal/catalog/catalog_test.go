package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/game/rules"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// lastRNG keeps the deck in order and always rolls the last enemy action.
type lastRNG struct{}

func (lastRNG) IntN(n int) int { return n - 1 }

var filler = game.CardSpec{Rank: 13, Suit: game.SuitWater}

type fixture struct {
	t      *testing.T
	clock  *schedule.ManualClock
	combat *game.Combat
}

// newFixture starts a combat against enemy with a single tableau column and
// plenty of mana diamonds. draws lists cards in the order they are drawn.
func newFixture(t *testing.T, enemy *game.EnemyTemplate, draws ...game.CardSpec) *fixture {
	t.Helper()
	deck := make([]game.CardSpec, 0, len(draws)+11)
	for i := 0; i < 10; i++ {
		deck = append(deck, filler)
	}
	for i := len(draws) - 1; i >= 0; i-- {
		deck = append(deck, draws[i])
	}
	deck = append(deck, filler)

	profile := DefaultProfile()
	profile.TableauSize = 1
	profile.ManaDiamonds = 20
	profile.Deck = deck

	f := &fixture{t: t, clock: schedule.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
	f.combat = game.NewCombat(zaptest.NewLogger(t), game.WithClock(f.clock), game.WithRNG(lastRNG{}))
	require.NoError(t, f.combat.Start(context.Background(), profile, enemy))
	return f
}

func dummy(actions ...string) *game.EnemyTemplate {
	if len(actions) == 0 {
		actions = []string{ActionDoNothing}
	}
	t := &game.EnemyTemplate{Name: "Dummy", MaxHealth: 40}
	for _, key := range actions {
		action, ok := EnemyAction(key)
		if !ok {
			panic("unknown action " + key)
		}
		t.Deck = append(t.Deck, action)
	}
	return t
}

func spell(t *testing.T, name string) game.CardSpec {
	t.Helper()
	spec, ok := Spell(name)
	require.True(t, ok, "spell %s", name)
	return spec
}

// freeSpell wraps an effect in a rank zero debug card.
func freeSpell(name string, effect game.Effect) game.CardSpec {
	return game.CardSpec{Suit: game.SuitKoala, Name: name, Effect: effect}
}

func summonSpell(key string) game.CardSpec {
	return freeSpell("Summon "+key, func(h *game.Handle) {
		h.SummonForPlayer(mustSummon(key))
	})
}

func (f *fixture) handCard(match func(game.CardView) bool) uuid.UUID {
	f.t.Helper()
	for _, cv := range f.combat.View().Hand {
		if match(cv) {
			return uuid.MustParse(cv.ID)
		}
	}
	f.t.Fatalf("card not in hand")
	return uuid.Nil
}

func (f *fixture) cast(name string) {
	f.t.Helper()
	id := f.handCard(func(cv game.CardView) bool { return cv.Name == name })
	require.True(f.t, f.combat.Click(game.Target{Area: game.AreaHand, CardID: id, Index: -1}))
	require.True(f.t, f.combat.Click(game.AreaTarget(game.AreaCastCard)), "cast %s", name)
	f.clock.RunAll(100)
}

func (f *fixture) burn(rank int, suit game.Suit) {
	f.t.Helper()
	id := f.handCard(func(cv game.CardView) bool { return cv.Rank == rank && cv.Suit == suit && !cv.Spell })
	require.True(f.t, f.combat.Click(game.Target{Area: game.AreaHand, CardID: id, Index: -1}))
	require.True(f.t, f.combat.Click(game.AreaTarget(game.AreaBurnCard)))
	f.clock.RunAll(100)
}

func (f *fixture) endTurn() {
	f.t.Helper()
	require.True(f.t, f.combat.EndTurn())
	f.clock.RunAll(100)
}

func summonNames(views []game.SummonView) []string {
	names := make([]string, 0, len(views))
	for _, s := range views {
		names = append(names, s.Name)
	}
	return names
}

func TestDamageSpells(t *testing.T) {
	tests := []struct {
		spell string
		want  int
	}{
		{"Shot", 40 - 8},
		{"Scorch", 40 - 11},
		{"Slash", 40 - 6},
	}
	for _, tt := range tests {
		t.Run(tt.spell, func(t *testing.T) {
			f := newFixture(t, dummy(), spell(t, tt.spell))
			f.cast(tt.spell)
			assert.Equal(t, tt.want, f.combat.View().Enemy.Health)
		})
	}
}

func TestScorchIsTrashedAfterItsCharge(t *testing.T) {
	f := newFixture(t, dummy(), spell(t, "Scorch"))
	f.cast("Scorch")

	v := f.combat.View()
	assert.Equal(t, 1, v.TrashCount)
	for _, cv := range v.Compost {
		assert.NotEqual(t, "Scorch", cv.Name)
	}
}

func TestShotIgnoresSummons(t *testing.T) {
	enemy := dummy(ActionSummonRat)
	f := newFixture(t, enemy, filler, filler, filler, filler, filler, spell(t, "Shot"))
	f.endTurn()
	require.Equal(t, []string{"Rat"}, summonNames(f.combat.View().Enemy.Summons))

	f.cast("Shot")
	v := f.combat.View()
	assert.Equal(t, 32, v.Enemy.Health)
	assert.Len(t, v.Enemy.Summons, 1)
}

func TestBlockSpells(t *testing.T) {
	f := newFixture(t, dummy(), spell(t, "Shield"), spell(t, "Parry the Platypus"))
	f.cast("Shield")
	assert.Equal(t, 4, f.combat.View().Player.Block)
	f.cast("Parry the Platypus")
	assert.Equal(t, 4+5, f.combat.View().Player.Block)
}

func TestShieldBashDealsBlock(t *testing.T) {
	f := newFixture(t, dummy(), spell(t, "Shield"), spell(t, "Shield Bash"))
	f.cast("Shield")
	f.cast("Shield Bash")
	assert.Equal(t, 36, f.combat.View().Enemy.Health)
}

func TestDrawSpellsKeepHand(t *testing.T) {
	f := newFixture(t, dummy(), spell(t, "Study"), spell(t, "Bill"))
	require.Len(t, f.combat.View().Hand, 5)

	f.cast("Study")
	assert.Len(t, f.combat.View().Hand, 4+3)
	f.cast("Bill")
	assert.Len(t, f.combat.View().Hand, 6+2)
}

func TestManaBurnCountsPoolCards(t *testing.T) {
	f := newFixture(t, dummy(), game.CardSpec{Rank: 1, Suit: game.SuitWood}, spell(t, "Mana Burn"))
	f.burn(1, game.SuitWood)
	f.cast("Mana Burn")
	assert.Equal(t, 39, f.combat.View().Enemy.Health)
}

func TestKoallaboratorSummonsCollaborator(t *testing.T) {
	f := newFixture(t, dummy(), spell(t, "Koallaborator"))
	f.cast("Koallaborator")
	assert.Equal(t, []string{"Collaborator"}, summonNames(f.combat.View().Player.Summons))
}

func TestDebugSpells(t *testing.T) {
	f := newFixture(t, dummy(ActionStrongAttack),
		filler, filler, filler, filler, filler,
		spell(t, "Debug Heal"), spell(t, "Debug Kill"))
	f.endTurn()
	require.Equal(t, 97, f.combat.View().Player.Health)

	f.cast("Debug Heal")
	assert.Equal(t, 100, f.combat.View().Player.Health)

	f.cast("Debug Kill")
	v := f.combat.View()
	assert.Equal(t, 0, v.Enemy.Health)
	assert.Equal(t, rules.StateEnemyDefeated, v.State)
}

func TestEnemyAttacks(t *testing.T) {
	tests := []struct {
		action string
		setup  string
		health int
	}{
		{ActionWeakAttack, "", 99},
		{ActionStrongAttack, "", 97},
		{ActionStrongAttack, "Shield", 100},
		{ActionWeakMagicAttack, "Shield", 99},
		{ActionStrongMagicAttack, "", 97},
		{ActionStrongAttack, "Koallaborator", 100},
		{ActionWeakRangedAttack, "Koallaborator", 99},
		{ActionStrongRangedAttack, "", 97},
	}
	for _, tt := range tests {
		t.Run(tt.action+"/"+tt.setup, func(t *testing.T) {
			var draws []game.CardSpec
			if tt.setup != "" {
				draws = append(draws, spell(t, tt.setup))
			}
			f := newFixture(t, dummy(tt.action), draws...)
			if tt.setup != "" {
				f.cast(tt.setup)
			}
			f.endTurn()
			assert.Equal(t, tt.health, f.combat.View().Player.Health)
		})
	}
}

func TestEnemyBlockAndBuff(t *testing.T) {
	f := newFixture(t, dummy(ActionBlock))
	f.endTurn()
	assert.Equal(t, 2, f.combat.View().Enemy.Block)

	f = newFixture(t, dummy(ActionBuff))
	f.endTurn()
	v := f.combat.View()
	assert.Equal(t, 1, v.Enemy.AttackBonus)
	assert.Equal(t, 1, v.Enemy.DefenseBonus)
}

func TestBuffRaisesLaterAttacks(t *testing.T) {
	enemy := dummy(ActionWeakAttack, ActionBuff)
	enemy.Actions = 2
	f := newFixture(t, enemy)
	require.Equal(t, []string{"Buff", "Weak Attack"}, f.combat.View().Enemy.Impending)

	f.endTurn()
	v := f.combat.View()
	assert.Equal(t, 1, v.Enemy.AttackBonus)
	assert.Equal(t, 100-2, v.Player.Health)
}

func TestEnemyHeal(t *testing.T) {
	f := newFixture(t, dummy(ActionHeal), spell(t, "Slash"))
	f.cast("Slash")
	f.endTurn()
	assert.Equal(t, 40-6+2, f.combat.View().Enemy.Health)
}

func TestSummonRatBitesSameTurn(t *testing.T) {
	f := newFixture(t, dummy(ActionSummonRat))
	f.endTurn()
	v := f.combat.View()
	assert.Equal(t, []string{"Rat"}, summonNames(v.Enemy.Summons))
	assert.Equal(t, 99, v.Player.Health)
}

func TestHasteAddsActions(t *testing.T) {
	f := newFixture(t, dummy(ActionDoNothing, ActionHaste))
	assert.Equal(t, []string{"Haste"}, f.combat.View().Enemy.Impending)
	f.endTurn()
	assert.Len(t, f.combat.View().Enemy.Impending, 2)
}

func TestPlayerSummons(t *testing.T) {
	tests := []struct {
		summon      string
		enemyAction string
		player      int
		enemy       int
	}{
		{SummonFireSalamander, ActionDoNothing, 100, 38},
		{SummonBladeQuokka, ActionDoNothing, 100, 35},
		{SummonStoneWombat, ActionStrongRangedAttack, 100, 40},
		{SummonForestGuardian, ActionStrongRangedAttack, 100, 38},
	}
	for _, tt := range tests {
		t.Run(tt.summon, func(t *testing.T) {
			f := newFixture(t, dummy(tt.enemyAction), summonSpell(tt.summon))
			f.cast("Summon " + tt.summon)
			f.endTurn()
			v := f.combat.View()
			assert.Equal(t, tt.player, v.Player.Health)
			assert.Equal(t, tt.enemy, v.Enemy.Health)
		})
	}
}

func TestHealingPlatypus(t *testing.T) {
	hurt := freeSpell("Hurt", func(h *game.Handle) {
		h.Player().TakeDamage(10, game.DamageMagic)
	})
	f := newFixture(t, dummy(), hurt, summonSpell(SummonHealingPlatypus))
	f.cast("Hurt")
	f.cast("Summon " + SummonHealingPlatypus)
	f.endTurn()
	assert.Equal(t, 93, f.combat.View().Player.Health)
}

func TestSummonLookup(t *testing.T) {
	for _, key := range []string{SummonCollaborator, SummonFireSalamander, SummonStoneWombat,
		SummonBladeQuokka, SummonHealingPlatypus, SummonForestGuardian, SummonRat} {
		tmpl, ok := Summon(key)
		require.True(t, ok, key)
		assert.Positive(t, tmpl.MaxHealth)
	}
	_, ok := Summon("dragon")
	assert.False(t, ok)
	assert.Panics(t, func() { mustSummon("dragon") })
}
