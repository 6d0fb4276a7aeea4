package game

import (
	"github.com/koacards/koa-server-go/internal/game/counters"
	"github.com/koacards/koa-server-go/internal/game/rules"
)

// View is a read-only snapshot of a combat session.
type View struct {
	CombatID   string          `json:"combat_id"`
	Version    uint64          `json:"version"`
	State      rules.TurnState `json:"state"`
	Turn       int             `json:"turn"`
	Processing bool            `json:"processing"`
	Reshuffles int             `json:"reshuffles"`
	Diamonds   int             `json:"diamonds"`

	Player PlayerView `json:"player"`
	Enemy  EnemyView  `json:"enemy"`

	DeckCount    int            `json:"deck_count"`
	Hand         []CardView     `json:"hand"`
	Compost      []CardView     `json:"compost"`
	TrashCount   int            `json:"trash_count"`
	Tableau      [][]CardView   `json:"tableau"`
	ManaPools    []ManaPoolView `json:"mana_pools"`
	Selected     *CardView      `json:"selected,omitempty"`
	AutoBurning  bool           `json:"auto_burning"`
	CanBurn      bool           `json:"can_burn"`
	CanCast      bool           `json:"can_cast"`
	PlaceColumns []int          `json:"place_columns,omitempty"`

	Stats StatsView `json:"stats"`
}

// CardView describes a card. Face-down cards expose only their ID.
type CardView struct {
	ID          string                 `json:"id"`
	Revealed    bool                   `json:"revealed"`
	Rank        int                    `json:"rank,omitempty"`
	Suit        Suit                   `json:"suit,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Spell       bool                   `json:"spell,omitempty"`
	Charges     int                    `json:"charges,omitempty"`
	Keywords    []string               `json:"keywords,omitempty"`
	Counters    []counters.CounterView `json:"counters,omitempty"`
	InFlight    bool                   `json:"in_flight,omitempty"`
}

type SummonView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Health      int    `json:"health"`
	MaxHealth   int    `json:"max_health"`
	Power       int    `json:"power"`
	Race        Race   `json:"race,omitempty"`
}

type CombatantView struct {
	Name      string       `json:"name"`
	Health    int          `json:"health"`
	MaxHealth int          `json:"max_health"`
	Block     int          `json:"block"`
	Armor     int          `json:"armor"`
	Summons   []SummonView `json:"summons"`
}

type PlayerView struct {
	CombatantView
	Stats Stats `json:"stats"`
	Gold  int   `json:"gold"`
}

type EnemyView struct {
	CombatantView
	Description  string   `json:"description,omitempty"`
	Impending    []string `json:"impending"`
	AttackBonus  int      `json:"attack_bonus"`
	DefenseBonus int      `json:"defense_bonus"`
}

type ManaPoolView struct {
	Suit  Suit       `json:"suit"`
	Size  int        `json:"size"`
	Top   *CardView  `json:"top,omitempty"`
	Cards []CardView `json:"cards"`
}

// StatsView reports what happened so far in the combat.
type StatsView struct {
	SpellsCast   int            `json:"spells_cast"`
	CardsBurned  int            `json:"cards_burned"`
	CardsDrawn   int            `json:"cards_drawn"`
	DamageTaken  map[Side]int   `json:"damage_taken"`
	SummonsLost  map[Side]int   `json:"summons_lost"`
	BurnedBySuit map[string]int `json:"burned_by_suit"`
}

// View returns a snapshot of the session.
func (c *Combat) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildView()
}

func (c *Combat) buildView() View {
	v := View{
		CombatID:    c.id.String(),
		Version:     c.scheduler.Generation(),
		State:       c.turn.Current(),
		Turn:        c.turn.TurnNumber(),
		Processing:  c.processing,
		Reshuffles:  c.reshuffles,
		Diamonds:    c.diamonds.Available(),
		DeckCount:   c.deck.Size(),
		Hand:        c.cardViews(c.hand.Cards()),
		Compost:     c.cardViews(c.compost.Cards()),
		TrashCount:  c.trash.Size(),
		AutoBurning: c.autoBurning,
		Stats:       c.statsView(),
	}

	for _, column := range c.tableau.Columns() {
		v.Tableau = append(v.Tableau, c.cardViews(column.Cards()))
	}
	for _, pool := range c.manaPools.All() {
		pv := ManaPoolView{
			Suit:  pool.Suit(),
			Size:  pool.Size(),
			Cards: c.cardViews(pool.Cards()),
		}
		if top := pool.Top(); top != nil {
			tv := c.cardView(top)
			pv.Top = &tv
		}
		v.ManaPools = append(v.ManaPools, pv)
	}

	if c.player != nil {
		v.Player = PlayerView{
			CombatantView: combatantView(&c.player.Combatant),
			Stats:         c.player.Stats,
			Gold:          c.player.Gold,
		}
	}
	if c.enemy != nil {
		v.Enemy = EnemyView{
			CombatantView: combatantView(&c.enemy.Combatant),
			Description:   c.enemy.Description,
			AttackBonus:   c.enemy.AttackBonus(),
			DefenseBonus:  c.enemy.DefenseBonus(),
		}
		for _, action := range c.enemy.Impending {
			v.Enemy.Impending = append(v.Enemy.Impending, action.Name)
		}
	}

	if c.selected != nil {
		sv := c.cardView(c.selected)
		v.Selected = &sv
		if c.acceptingInput() {
			v.CanBurn = c.canBurn(c.selected)
			v.CanCast = c.canCast(c.selected)
			for i := 0; i < c.tableau.Size(); i++ {
				if c.canPlaceOnColumn(c.selected, i) {
					v.PlaceColumns = append(v.PlaceColumns, i)
				}
			}
		}
	}
	return v
}

func (c *Combat) cardView(card *Card) CardView {
	cv := CardView{
		ID:       card.ID.String(),
		Revealed: card.Revealed,
		InFlight: c.isInFlight(card),
	}
	if !card.Revealed {
		return cv
	}
	cv.Rank = card.Rank
	cv.Suit = card.Suit
	cv.Name = card.Name()
	if card.IsSpell() {
		cv.Spell = true
		cv.Description = card.Spell.Description
		cv.Keywords = card.Spell.Keywords
		cv.Counters = card.Spell.Counters.ToView()
		if card.HasLimitedCharges() {
			cv.Charges = card.Charges()
		}
	}
	return cv
}

func (c *Combat) cardViews(cards []*Card) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, card := range cards {
		views = append(views, c.cardView(card))
	}
	return views
}

func combatantView(cb *Combatant) CombatantView {
	v := CombatantView{
		Name:      cb.Name,
		Health:    cb.Health,
		MaxHealth: cb.MaxHealth,
		Block:     cb.Block,
		Armor:     cb.Armor,
		Summons:   make([]SummonView, 0, len(cb.Summons)),
	}
	for _, s := range cb.Summons {
		v.Summons = append(v.Summons, SummonView{
			ID:          s.ID.String(),
			Name:        s.Name,
			Description: s.Description,
			Health:      s.Health,
			MaxHealth:   s.MaxHealth,
			Power:       s.Power,
			Race:        s.Race,
		})
	}
	return v
}

func (c *Combat) statsView() StatsView {
	stats := StatsView{
		SpellsCast:   c.spells.GetCount(string(SidePlayer)),
		CardsBurned:  c.burned.GetTotal(),
		CardsDrawn:   c.drawn.GetCount(),
		DamageTaken:  make(map[Side]int, 2),
		SummonsLost:  make(map[Side]int, 2),
		BurnedBySuit: make(map[string]int),
	}
	for _, side := range []Side{SidePlayer, SideEnemy} {
		stats.DamageTaken[side] = c.damage.GetAmount(string(side))
		stats.SummonsLost[side] = c.losses.GetCount(string(side))
	}
	for _, suit := range ElementalSuits {
		if n := c.burned.GetCount(suit.String()); n > 0 {
			stats.BurnedBySuit[suit.String()] = n
		}
	}
	return stats
}
