package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/koacards/koa-server-go/internal/game"
	"gopkg.in/yaml.v3"
)

// MaxRank is the highest rank a mana card may have.
const MaxRank = 13

// DeckList is the file form of a player profile. Zero values fall back to the
// default profile.
type DeckList struct {
	Name         string      `yaml:"name"`
	MaxHealth    int         `yaml:"max_health"`
	Gold         int         `yaml:"gold"`
	Armor        int         `yaml:"armor"`
	HandSize     int         `yaml:"hand_size"`
	TableauSize  int         `yaml:"tableau_size"`
	ManaDiamonds int         `yaml:"mana_diamonds"`
	Stats        *StatsEntry `yaml:"stats"`
	Cards        []DeckEntry `yaml:"cards"`
}

type StatsEntry struct {
	Attack  int `yaml:"attack"`
	Agility int `yaml:"agility"`
	Arcane  int `yaml:"arcane"`
	Appeal  int `yaml:"appeal"`
}

// DeckEntry is either a mana card (rank and suit) or a spell by name.
// Count defaults to one.
type DeckEntry struct {
	Rank  int    `yaml:"rank"`
	Suit  string `yaml:"suit"`
	Spell string `yaml:"spell"`
	Count int    `yaml:"count"`
}

// LoadDeckList reads and resolves a deck list file.
func LoadDeckList(path string) (*game.PlayerProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck list: %w", err)
	}
	return ParseDeckList(b)
}

// ParseDeckList resolves a YAML deck list against the catalog.
func ParseDeckList(data []byte) (*game.PlayerProfile, error) {
	var list DeckList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse deck list: %w", err)
	}
	return list.Profile()
}

// Profile builds a player profile from the list.
func (l *DeckList) Profile() (*game.PlayerProfile, error) {
	p := DefaultProfile()
	if l.Name != "" {
		p.Name = l.Name
	}
	if l.MaxHealth > 0 {
		p.MaxHealth = l.MaxHealth
		p.Health = l.MaxHealth
	}
	if l.Gold > 0 {
		p.Gold = l.Gold
	}
	if l.Armor > 0 {
		p.Armor = l.Armor
	}
	if l.HandSize > 0 {
		p.HandSize = l.HandSize
	}
	if l.TableauSize > 0 {
		p.TableauSize = l.TableauSize
	}
	if l.ManaDiamonds > 0 {
		p.ManaDiamonds = l.ManaDiamonds
	}
	if l.Stats != nil {
		p.Stats = game.Stats{
			Attack:  l.Stats.Attack,
			Agility: l.Stats.Agility,
			Arcane:  l.Stats.Arcane,
			Appeal:  l.Stats.Appeal,
		}
	}

	if len(l.Cards) == 0 {
		return p, nil
	}
	deck, err := resolveCards(l.Cards)
	if err != nil {
		return nil, err
	}
	p.Deck = deck
	return p, nil
}

func resolveCards(entries []DeckEntry) ([]game.CardSpec, error) {
	var deck []game.CardSpec
	var errs []error
	for i, entry := range entries {
		spec, err := entry.resolve()
		if err != nil {
			errs = append(errs, fmt.Errorf("card %d: %w", i+1, err))
			continue
		}
		count := entry.Count
		if count <= 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			deck = append(deck, spec)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return deck, nil
}

func (e DeckEntry) resolve() (game.CardSpec, error) {
	if e.Spell != "" {
		spec, ok := Spell(e.Spell)
		if !ok {
			return game.CardSpec{}, fmt.Errorf("unknown spell %q", e.Spell)
		}
		return spec, nil
	}
	suit, err := game.ParseSuit(e.Suit)
	if err != nil {
		return game.CardSpec{}, err
	}
	if suit.IsDebug() {
		return game.CardSpec{}, fmt.Errorf("suit %s holds only spells", suit)
	}
	if e.Rank < 1 || e.Rank > MaxRank {
		return game.CardSpec{}, fmt.Errorf("rank %d out of range 1-%d", e.Rank, MaxRank)
	}
	return game.CardSpec{Rank: e.Rank, Suit: suit}, nil
}
