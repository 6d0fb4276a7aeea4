package game

import (
	"github.com/google/uuid"
)

// Race tags a summon. Some cards care about the races on the board.
type Race string

const (
	RaceKoala          Race = "koala"
	RaceFlyingSquirrel Race = "flying squirrel"
	RaceSalamander     Race = "salamander"
	RaceWombat         Race = "wombat"
	RaceQuokka         Race = "quokka"
	RacePlatypus       Race = "platypus"
	RaceDingo          Race = "dingo"
	RaceRat            Race = "rat"
)

// SummonTemplate describes a summon that cards and enemy actions can create.
type SummonTemplate struct {
	Name        string
	Description string
	MaxHealth   int
	Power       int
	Race        Race
	Effect      Effect
}

// New creates a fresh summon at full health.
func (t SummonTemplate) New() *Summon {
	return &Summon{
		ID:          uuid.New(),
		Name:        t.Name,
		Description: t.Description,
		MaxHealth:   t.MaxHealth,
		Health:      t.MaxHealth,
		Power:       t.Power,
		Race:        t.Race,
		Effect:      t.Effect,
	}
}

// Summon is a minion bound to a combatant. It intercepts damage aimed at its
// owner and fires its effect once per turn while alive.
type Summon struct {
	ID          uuid.UUID
	Name        string
	Description string
	MaxHealth   int
	Health      int
	Power       int
	Race        Race
	Effect      Effect
}

// Alive reports whether the summon has health left.
func (s *Summon) Alive() bool {
	return s.Health > 0
}
