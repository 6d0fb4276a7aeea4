package game

// Stats are the player's persistent attributes read by card effects.
type Stats struct {
	Attack  int
	Agility int
	Arcane  int
	Appeal  int
}

// PlayerProfile is the persistent player record that outlives a combat.
type PlayerProfile struct {
	Name string
	Stats
	Armor        int
	MaxHealth    int
	Health       int
	Gold         int
	HandSize     int
	TableauSize  int
	ManaDiamonds int
	Deck         []CardSpec
}

const (
	DefaultHandSize    = 5
	DefaultTableauSize = 5
)

// NewCombatCopy creates the in-combat player from the profile.
func (p *PlayerProfile) NewCombatCopy() *Player {
	health := p.Health
	if health <= 0 || health > p.MaxHealth {
		health = p.MaxHealth
	}
	return &Player{
		Combatant: Combatant{
			Name:      p.Name,
			Health:    health,
			MaxHealth: p.MaxHealth,
			Armor:     p.Armor,
		},
		Stats:   p.Stats,
		Gold:    p.Gold,
		profile: p,
	}
}

// handSize returns the configured hand size.
func (p *PlayerProfile) handSize() int {
	if p.HandSize > 0 {
		return p.HandSize
	}
	return DefaultHandSize
}

// tableauSize returns the configured number of tableau columns.
func (p *PlayerProfile) tableauSize() int {
	if p.TableauSize > 0 {
		return p.TableauSize
	}
	return DefaultTableauSize
}

// Player is the in-combat copy of a PlayerProfile.
type Player struct {
	Combatant
	Stats
	Gold int

	profile *PlayerProfile
}

// Profile returns the persistent record this player was copied from.
func (p *Player) Profile() *PlayerProfile {
	return p.profile
}

// syncHealth writes the current health back to the profile.
func (p *Player) syncHealth() {
	if p.profile != nil {
		p.profile.Health = p.Health
	}
}

// SyncToProfile writes health, stats and gold back to the profile.
func (p *Player) SyncToProfile() {
	if p.profile == nil {
		return
	}
	p.profile.Health = p.Health
	p.profile.Stats = p.Stats
	p.profile.Armor = p.Armor
	p.profile.Gold = p.Gold
}
