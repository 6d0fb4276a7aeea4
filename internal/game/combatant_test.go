package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observedNumber struct {
	amount int
	kind   NumberKind
}

type recordingObserver struct {
	numbers []observedNumber
	died    []*Summon
	results []DamageResult
}

func (o *recordingObserver) number(_ *Combatant, amount int, kind NumberKind) {
	o.numbers = append(o.numbers, observedNumber{amount: amount, kind: kind})
}

func (o *recordingObserver) summonDied(_ *Combatant, s *Summon) {
	o.died = append(o.died, s)
}

func (o *recordingObserver) damaged(_ *Combatant, result DamageResult) {
	o.results = append(o.results, result)
}

func newObservedCombatant(health int) (*Combatant, *recordingObserver) {
	obs := &recordingObserver{}
	c := NewCombatant("Target", health)
	c.observer = obs
	return &c, obs
}

func summonWithHealth(name string, health int) *Summon {
	return SummonTemplate{Name: name, MaxHealth: health}.New()
}

func TestTakeDamageExcessOnSummonIsDropped(t *testing.T) {
	c, obs := newObservedCombatant(30)
	s := summonWithHealth("Koala", 2)
	c.AddSummon(s)

	result := c.TakeDamage(5, DamagePhysical)

	assert.Empty(t, c.Summons)
	assert.Equal(t, 30, c.Health)
	assert.Equal(t, 0, s.Health)
	assert.Equal(t, 2, result.SummonDamage)
	assert.Zero(t, result.HealthLost)
	assert.Equal(t, []*Summon{s}, obs.died)
	assert.Equal(t, []*Summon{s}, result.SummonsKilled)
}

func TestTakeDamageFirstSummonAbsorbs(t *testing.T) {
	c, _ := newObservedCombatant(30)
	front, back := summonWithHealth("Front", 5), summonWithHealth("Back", 5)
	c.AddSummon(front)
	c.AddSummon(back)

	c.TakeDamage(3, DamagePhysical)

	assert.Equal(t, 2, front.Health)
	assert.Equal(t, 5, back.Health)
	assert.Equal(t, 30, c.Health)
}

func TestTakeDamageBlockBeforeHealth(t *testing.T) {
	c, obs := newObservedCombatant(30)
	c.GainBlock(4)

	result := c.TakeDamage(7, DamagePhysical)

	assert.Equal(t, 0, c.Block)
	assert.Equal(t, 27, c.Health)
	assert.Equal(t, 4, result.BlockLost)
	assert.Equal(t, 3, result.HealthLost)
	assert.Equal(t, []observedNumber{
		{4, NumberBlockGain},
		{4, NumberBlockLoss},
		{3, NumberDamage},
	}, obs.numbers)
	require.Len(t, obs.results, 1)
	assert.Equal(t, 7, obs.results[0].Total())
}

func TestTakeDamageFullyBlocked(t *testing.T) {
	c, _ := newObservedCombatant(30)
	c.GainBlock(10)

	result := c.TakeDamage(6, DamagePhysical)

	assert.Equal(t, 4, c.Block)
	assert.Equal(t, 30, c.Health)
	assert.Zero(t, result.HealthLost)
}

func TestTakeDamageMagicIgnoresBlock(t *testing.T) {
	c, _ := newObservedCombatant(30)
	c.GainBlock(10)

	c.TakeDamage(6, DamageMagic)

	assert.Equal(t, 10, c.Block)
	assert.Equal(t, 24, c.Health)
}

func TestTakeDamageRangedSkipsSummons(t *testing.T) {
	c, _ := newObservedCombatant(30)
	s := summonWithHealth("Wall", 10)
	c.AddSummon(s)

	c.TakeDamage(4, DamageRanged)

	assert.Equal(t, 10, s.Health)
	assert.Equal(t, 26, c.Health)
}

func TestTakeDamageBackstab(t *testing.T) {
	t.Run("hits the last summon", func(t *testing.T) {
		c, _ := newObservedCombatant(30)
		front, back := summonWithHealth("Front", 5), summonWithHealth("Back", 5)
		c.AddSummon(front)
		c.AddSummon(back)

		c.TakeDamage(3, DamageBackstab)

		assert.Equal(t, 5, front.Health)
		assert.Equal(t, 2, back.Health)
		assert.Equal(t, 30, c.Health)
	})

	t.Run("doubles without summons", func(t *testing.T) {
		c, _ := newObservedCombatant(30)

		c.TakeDamage(3, DamageBackstab)

		assert.Equal(t, 24, c.Health)
	})
}

func TestTakeDamageAoe(t *testing.T) {
	c, obs := newObservedCombatant(30)
	weak, strong := summonWithHealth("Weak", 2), summonWithHealth("Strong", 10)
	c.AddSummon(weak)
	c.AddSummon(strong)

	result := c.TakeDamage(4, DamageAoe)

	assert.Equal(t, []*Summon{strong}, c.Summons)
	assert.Equal(t, 6, strong.Health)
	assert.Equal(t, 26, c.Health)
	assert.Equal(t, []*Summon{weak}, obs.died)
	assert.Equal(t, 6, result.SummonDamage)
}

func TestTakeDamagePiercing(t *testing.T) {
	c, _ := newObservedCombatant(30)
	a, b := summonWithHealth("A", 2), summonWithHealth("B", 3)
	c.AddSummon(a)
	c.AddSummon(b)

	result := c.TakeDamage(8, DamagePiercing)

	assert.Empty(t, c.Summons)
	assert.Equal(t, 27, c.Health)
	assert.Equal(t, 5, result.SummonDamage)
	assert.Equal(t, 3, result.HealthLost)
}

func TestTakeDamagePiercingStopsInsideSummon(t *testing.T) {
	c, _ := newObservedCombatant(30)
	a, b := summonWithHealth("A", 2), summonWithHealth("B", 5)
	c.AddSummon(a)
	c.AddSummon(b)

	c.TakeDamage(4, DamagePiercing)

	assert.Equal(t, []*Summon{b}, c.Summons)
	assert.Equal(t, 3, b.Health)
	assert.Equal(t, 30, c.Health)
}

func TestTakeDamageClampsHealth(t *testing.T) {
	c, _ := newObservedCombatant(5)

	result := c.TakeDamage(12, DamagePhysical)

	assert.Equal(t, 0, c.Health)
	assert.True(t, result.Died)
	assert.True(t, c.IsDead())
	assert.Equal(t, 5, result.HealthLost)
}

func TestTakeDamageIgnoresNonPositive(t *testing.T) {
	c, obs := newObservedCombatant(5)

	c.TakeDamage(0, DamagePhysical)
	c.TakeDamage(-3, DamageMagic)

	assert.Equal(t, 5, c.Health)
	assert.Empty(t, obs.numbers)
	assert.Empty(t, obs.results)
}

func TestGainHealthClampsToMax(t *testing.T) {
	c, _ := newObservedCombatant(20)
	c.Health = 15

	assert.Equal(t, 5, c.GainHealth(8))
	assert.Equal(t, 20, c.Health)
	assert.Equal(t, 0, c.GainHealth(3))
}

func TestDamageTypeString(t *testing.T) {
	assert.Equal(t, "physical", DamagePhysical.String())
	assert.Equal(t, "magic+piercing", (DamageMagic | DamagePiercing).String())
	assert.True(t, (DamageAoe | DamageRanged).Has(DamageAoe))
	assert.False(t, DamageAoe.Has(DamageAoe|DamageRanged))
}
