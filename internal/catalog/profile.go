package catalog

import (
	"github.com/koacards/koa-server-go/internal/game"
)

// DefaultPlayerName is the name of the default profile.
const DefaultPlayerName = "Koa XIII"

// DefaultManaDeck returns ranks 1 to 9 of every elemental suit.
func DefaultManaDeck() []game.CardSpec {
	deck := make([]game.CardSpec, 0, 9*len(game.ElementalSuits))
	for _, suit := range game.ElementalSuits {
		for rank := 1; rank <= 9; rank++ {
			deck = append(deck, game.CardSpec{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// DefaultProfile returns a new player profile with the default mana deck and
// the starter spells.
func DefaultProfile() *game.PlayerProfile {
	deck := append(DefaultManaDeck(), SpellSet(SetStarter)...)
	return &game.PlayerProfile{
		Name: DefaultPlayerName,
		Stats: game.Stats{
			Attack:  3,
			Agility: 3,
			Arcane:  3,
			Appeal:  5,
		},
		MaxHealth:   100,
		Health:      100,
		Gold:        150,
		HandSize:    game.DefaultHandSize,
		TableauSize: game.DefaultTableauSize,
		Deck:        deck,
	}
}
