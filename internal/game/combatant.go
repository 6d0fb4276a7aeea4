package game

import "strings"

// DamageType is a set of flags modifying how damage is applied.
type DamageType uint8

const (
	// DamageMagic ignores block.
	DamageMagic DamageType = 1 << iota
	// DamageRanged skips summons.
	DamageRanged
	// DamageBackstab hits the last summon, or deals double damage without summons.
	DamageBackstab
	// DamageAoe hits every summon and the combatant.
	DamageAoe
	// DamagePiercing carries excess damage through summons.
	DamagePiercing
)

// DamagePhysical is plain damage with no modifiers.
const DamagePhysical DamageType = 0

var damageTypeNames = []struct {
	flag DamageType
	name string
}{
	{DamageMagic, "magic"},
	{DamageRanged, "ranged"},
	{DamageBackstab, "backstab"},
	{DamageAoe, "aoe"},
	{DamagePiercing, "piercing"},
}

// Has reports whether every flag in f is set.
func (d DamageType) Has(f DamageType) bool {
	return d&f == f
}

func (d DamageType) String() string {
	if d == DamagePhysical {
		return "physical"
	}
	var parts []string
	for _, entry := range damageTypeNames {
		if d.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "+")
}

// NumberKind classifies a floating damage number.
type NumberKind string

const (
	NumberDamage    NumberKind = "damage"
	NumberBlockLoss NumberKind = "block-loss"
	NumberBlockGain NumberKind = "block-gain"
	NumberHeal      NumberKind = "heal"
)

// DamageResult summarizes what a single hit did.
type DamageResult struct {
	SummonDamage  int
	BlockLost     int
	HealthLost    int
	SummonsKilled []*Summon
	Died          bool
}

// Total returns all damage absorbed by summons, block and health.
func (r DamageResult) Total() int {
	return r.SummonDamage + r.BlockLost + r.HealthLost
}

// combatantObserver receives presentation and bookkeeping callbacks from a combatant.
type combatantObserver interface {
	number(c *Combatant, amount int, kind NumberKind)
	summonDied(c *Combatant, s *Summon)
	damaged(c *Combatant, result DamageResult)
}

// Combatant is anything that can take damage: the player or the enemy.
type Combatant struct {
	Name      string
	Health    int
	MaxHealth int
	Block     int
	// Armor is carried for card effects; damage resolution does not read it.
	Armor   int
	Summons []*Summon

	observer combatantObserver
}

// NewCombatant creates a combatant at full health.
func NewCombatant(name string, maxHealth int) Combatant {
	return Combatant{Name: name, Health: maxHealth, MaxHealth: maxHealth}
}

// IsDead reports whether the combatant has no health left.
func (c *Combatant) IsDead() bool {
	return c.Health <= 0
}

// TakeDamage applies amount damage of the given type.
//
// Summons are hit first unless the damage is ranged. Piercing damage walks the
// summons in order and carries the excess into the combatant. Area damage hits
// every summon and then the combatant. Otherwise a single summon (the first,
// or the last for a backstab) absorbs the whole hit and excess is lost.
// Backstab with no summon in the way deals double damage. Damage that reaches
// the combatant is absorbed by block unless it is magic.
func (c *Combatant) TakeDamage(amount int, types DamageType) DamageResult {
	result := c.applyDamage(amount, types)
	if c.observer != nil && result.Total() > 0 {
		c.observer.damaged(c, result)
	}
	return result
}

func (c *Combatant) applyDamage(amount int, types DamageType) DamageResult {
	var result DamageResult
	if amount <= 0 {
		return result
	}

	toCombatant := amount
	hasSummons := len(c.Summons) > 0

	switch {
	case hasSummons && types.Has(DamagePiercing):
		remaining := amount
		for _, s := range append([]*Summon(nil), c.Summons...) {
			if remaining <= 0 {
				break
			}
			hit := min(remaining, s.Health)
			remaining -= hit
			c.hitSummon(s, hit, &result)
		}
		toCombatant = remaining
	case hasSummons && types.Has(DamageAoe):
		for _, s := range append([]*Summon(nil), c.Summons...) {
			c.hitSummon(s, amount, &result)
		}
	case hasSummons && !types.Has(DamageRanged):
		target := c.Summons[0]
		if types.Has(DamageBackstab) {
			target = c.Summons[len(c.Summons)-1]
		}
		c.hitSummon(target, amount, &result)
		return result
	case types.Has(DamageBackstab):
		toCombatant = amount * 2
	}

	if toCombatant <= 0 {
		return result
	}

	if !types.Has(DamageMagic) && c.Block > 0 {
		absorbed := min(c.Block, toCombatant)
		c.Block -= absorbed
		toCombatant -= absorbed
		result.BlockLost = absorbed
		c.emitNumber(absorbed, NumberBlockLoss)
	}

	if toCombatant > 0 {
		lost := min(c.Health, toCombatant)
		c.Health -= toCombatant
		if c.Health < 0 {
			c.Health = 0
		}
		result.HealthLost = lost
		c.emitNumber(toCombatant, NumberDamage)
	}

	result.Died = c.Health <= 0
	return result
}

func (c *Combatant) hitSummon(s *Summon, amount int, result *DamageResult) {
	absorbed := min(amount, max(s.Health, 0))
	s.Health -= amount
	result.SummonDamage += absorbed
	c.emitNumber(amount, NumberDamage)
	if s.Health <= 0 {
		s.Health = 0
		c.RemoveSummon(s)
		result.SummonsKilled = append(result.SummonsKilled, s)
		if c.observer != nil {
			c.observer.summonDied(c, s)
		}
	}
}

// GainBlock adds block.
func (c *Combatant) GainBlock(amount int) {
	if amount <= 0 {
		return
	}
	c.Block += amount
	c.emitNumber(amount, NumberBlockGain)
}

// GainHealth heals up to max health and returns the amount actually healed.
func (c *Combatant) GainHealth(amount int) int {
	if amount <= 0 {
		return 0
	}
	healed := min(amount, c.MaxHealth-c.Health)
	if healed < 0 {
		healed = 0
	}
	c.Health += healed
	c.emitNumber(amount, NumberHeal)
	return healed
}

// AddSummon puts a summon at the back of the line.
func (c *Combatant) AddSummon(s *Summon) {
	if s == nil {
		return
	}
	c.Summons = append(c.Summons, s)
}

// RemoveSummon removes a summon by reference.
func (c *Combatant) RemoveSummon(s *Summon) bool {
	for i, existing := range c.Summons {
		if existing == s {
			c.Summons = append(c.Summons[:i], c.Summons[i+1:]...)
			return true
		}
	}
	return false
}

// HasSummon reports whether the summon is still in play.
func (c *Combatant) HasSummon(s *Summon) bool {
	for _, existing := range c.Summons {
		if existing == s {
			return true
		}
	}
	return false
}

func (c *Combatant) emitNumber(amount int, kind NumberKind) {
	if c.observer != nil {
		c.observer.number(c, amount, kind)
	}
}
