package game

import (
	"github.com/koacards/koa-server-go/internal/game/counters"
)

// EnemyAction is one entry in an enemy's action deck.
type EnemyAction struct {
	Name        string
	Description string
	Effect      Effect
}

// EnemyTemplate describes an enemy that a combat can be started against.
type EnemyTemplate struct {
	Name        string
	Description string
	MaxHealth   int
	// Actions is the number of actions rolled per turn. Zero means one.
	Actions int
	Deck    []*EnemyAction
}

// NewEnemy creates a fresh enemy at full health.
func (t *EnemyTemplate) NewEnemy() *Enemy {
	actions := t.Actions
	if actions <= 0 {
		actions = 1
	}
	return &Enemy{
		Combatant:   NewCombatant(t.Name, t.MaxHealth),
		Description: t.Description,
		Deck:        append([]*EnemyAction(nil), t.Deck...),
		Actions:     actions,
		Counters:    counters.NewCounters(),
		template:    t,
	}
}

// Enemy is the opponent in a combat.
type Enemy struct {
	Combatant
	Description string
	Deck        []*EnemyAction
	Actions     int
	Impending   []*EnemyAction
	Counters    *counters.Counters

	template *EnemyTemplate
}

// Template returns the template the enemy was created from.
func (e *Enemy) Template() *EnemyTemplate {
	return e.template
}

// LoadActions rolls the actions for the coming turn by sampling the action
// deck without replacement.
func (e *Enemy) LoadActions(rng RNG) {
	e.Impending = e.Impending[:0]
	pool := append([]*EnemyAction(nil), e.Deck...)
	count := e.Actions + e.Counters.Count(counters.CounterTypeHaste)
	for i := 0; i < count && len(pool) > 0; i++ {
		idx := rng.IntN(len(pool))
		e.Impending = append(e.Impending, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
}

// AttackBonus returns the bonus added to the enemy's attacks.
func (e *Enemy) AttackBonus() int {
	return e.Counters.Count(counters.CounterTypeAttackBonus)
}

// DefenseBonus returns the bonus added to the enemy's block actions.
func (e *Enemy) DefenseBonus() int {
	return e.Counters.Count(counters.CounterTypeDefenseBonus)
}

// Buff raises both the attack and defense bonus.
func (e *Enemy) Buff(amount int) {
	e.Counters.Add(counters.CounterTypeAttackBonus, amount)
	e.Counters.Add(counters.CounterTypeDefenseBonus, amount)
}

// Hasten grants extra actions on future turns.
func (e *Enemy) Hasten(amount int) {
	e.Counters.Add(counters.CounterTypeHaste, amount)
}
