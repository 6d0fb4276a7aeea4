package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// stableRNG always picks the last candidate, which makes Shuffle an identity
// permutation and LoadActions take actions from the back of the deck.
type stableRNG struct{}

func (stableRNG) IntN(n int) int { return n - 1 }

type shownNumber struct {
	side   Side
	amount int
	kind   NumberKind
}

type recordingPresenter struct {
	mu      sync.Mutex
	sounds  []Sound
	numbers []shownNumber
}

func (p *recordingPresenter) ShowNumber(side Side, amount int, kind NumberKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.numbers = append(p.numbers, shownNumber{side: side, amount: amount, kind: kind})
}

func (p *recordingPresenter) PlaySound(sound Sound) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sounds = append(p.sounds, sound)
}

// combatHarness drives a Combat with a manual clock and recording collaborators.
type combatHarness struct {
	t         *testing.T
	clock     *schedule.ManualClock
	combat    *Combat
	presenter *recordingPresenter
	profile   *PlayerProfile
	enemy     *EnemyTemplate

	// mu guards the recorded callbacks below.
	mu              sync.Mutex
	confirmations   []string
	onConfirm       func()
	announcements   []string
	enemiesDefeated []string
	playerDefeats   int
	continues       int
	views           []View
}

func newHarness(t *testing.T, profile *PlayerProfile, enemy *EnemyTemplate) *combatHarness {
	t.Helper()
	h := &combatHarness{
		t:         t,
		clock:     schedule.NewManualClock(testEpoch),
		presenter: &recordingPresenter{},
		profile:   profile,
		enemy:     enemy,
	}
	h.combat = NewCombat(zaptest.NewLogger(t),
		WithClock(h.clock),
		WithRNG(stableRNG{}),
		WithPresenter(h.presenter),
		WithConfirmer(ConfirmerFunc(func(message string, onConfirm func()) {
			h.record(func() {
				h.confirmations = append(h.confirmations, message)
				h.onConfirm = onConfirm
			})
		})),
		WithHooks(Hooks{
			OnEnemyDefeated: func(name string) {
				h.record(func() { h.enemiesDefeated = append(h.enemiesDefeated, name) })
			},
			OnEnemyDefeatedContinue: func() { h.record(func() { h.continues++ }) },
			OnPlayerDefeated:        func() { h.record(func() { h.playerDefeats++ }) },
			Announce: func(message string) {
				h.record(func() { h.announcements = append(h.announcements, message) })
			},
		}),
	)
	h.combat.Subscribe(func(v View) { h.record(func() { h.views = append(h.views, v) }) })
	h.start()
	return h
}

func (h *combatHarness) record(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

func (h *combatHarness) start() {
	h.t.Helper()
	require.NoError(h.t, h.combat.Start(context.Background(), h.profile, h.enemy))
}

// state runs fn with the combat lock held.
func (h *combatHarness) state(fn func(c *Combat)) {
	h.combat.mu.Lock()
	defer h.combat.unlock()
	fn(h.combat)
}

func (h *combatHarness) advance(d time.Duration) {
	h.clock.Advance(d)
}

// settle fires every pending timer, including ones scheduled while firing.
func (h *combatHarness) settle() {
	h.clock.RunAll(1000)
}

func (h *combatHarness) click(t Target) bool {
	return h.combat.Click(t)
}

// stage replaces the hand, tableau and mana pools with fresh revealed cards.
// Each tableau column lists its cards top to bottom.
func (h *combatHarness) stage(hand []*Card, columns ...[]*Card) {
	h.state(func(c *Combat) {
		c.hand.takeAll()
		c.tableau.takeAll()
		c.manaPools.takeAll()
		c.selected = nil
		for _, card := range hand {
			card.Revealed = true
		}
		c.hand.Add(hand...)
		for i, cards := range columns {
			c.tableau.Column(i).Add(cards...)
		}
		c.tableau.RevealBottoms()
	})
}

// fillPool burns count throwaway cards of the suit into its pool.
func (h *combatHarness) fillPool(suit Suit, count int) {
	h.state(func(c *Combat) {
		pool := c.manaPools.Pool(suit)
		for i := 0; i < count; i++ {
			pool.Add(newCard(pool.Size()+1, suit))
		}
	})
}

// cardIDs returns every card ID held by any pile in the session.
func (h *combatHarness) cardIDs() map[uuid.UUID]int {
	ids := make(map[uuid.UUID]int)
	h.state(func(c *Combat) {
		groups := []*CardGroup{&c.deck.CardGroup, &c.hand.CardGroup, &c.compost.CardGroup, &c.trash.CardGroup}
		groups = append(groups, c.tableau.Columns()...)
		for _, pool := range c.manaPools.All() {
			groups = append(groups, &pool.CardGroup)
		}
		for _, g := range groups {
			for _, card := range g.Cards() {
				ids[card.ID]++
			}
		}
	})
	return ids
}

func (h *combatHarness) requireConserved(before map[uuid.UUID]int) {
	h.t.Helper()
	require.Equal(h.t, before, h.cardIDs(), "cards were lost or duplicated")
}

func newCard(rank int, suit Suit) *Card {
	return CardSpec{Rank: rank, Suit: suit}.NewCard()
}

func revealed(card *Card) *Card {
	card.Revealed = true
	return card
}

func newSpell(name string, rank int, suit Suit, effect Effect) *Card {
	if effect == nil {
		effect = func(*Handle) {}
	}
	card := CardSpec{Rank: rank, Suit: suit, Name: name, Effect: effect}.NewCard()
	card.Revealed = true
	return card
}

func manaSpecs(suit Suit, ranks ...int) []CardSpec {
	specs := make([]CardSpec, 0, len(ranks))
	for _, rank := range ranks {
		specs = append(specs, CardSpec{Rank: rank, Suit: suit})
	}
	return specs
}

// testProfile returns a profile with a 30 card deck of wood and fire cards.
func testProfile() *PlayerProfile {
	deck := append(manaSpecs(SuitWood, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 1, 2),
		manaSpecs(SuitFire, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 1, 2)...)
	return &PlayerProfile{
		Name:      "Tester",
		MaxHealth: 30,
		Health:    30,
		Deck:      deck,
	}
}

func idleEnemy() *EnemyTemplate {
	return &EnemyTemplate{
		Name:      "Training Dummy",
		MaxHealth: 20,
		Deck:      []*EnemyAction{{Name: "Wait"}},
	}
}

func attackingEnemy(damage int) *EnemyTemplate {
	return &EnemyTemplate{
		Name:      "Brute",
		MaxHealth: 20,
		Deck: []*EnemyAction{{
			Name: "Smash",
			Effect: func(h *Handle) {
				h.Opponent(h.ActingSide()).TakeDamage(damage, DamagePhysical)
			},
		}},
	}
}
