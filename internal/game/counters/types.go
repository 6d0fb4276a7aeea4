package counters

// CounterType names a kind of counter carried by a card or combatant.
type CounterType string

const (
	// CounterTypeCharge tracks the remaining uses of a limited spell.
	CounterTypeCharge CounterType = "charge"
	// CounterTypeAttackBonus adds to an enemy's attack actions.
	CounterTypeAttackBonus CounterType = "attack_bonus"
	// CounterTypeDefenseBonus adds to an enemy's block actions.
	CounterTypeDefenseBonus CounterType = "defense_bonus"
	// CounterTypeHaste grants an enemy extra actions per turn.
	CounterTypeHaste CounterType = "haste"
)

// String returns the string representation of the counter type.
func (ct CounterType) String() string {
	return string(ct)
}
