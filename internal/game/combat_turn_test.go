package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koacards/koa-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDealsAndDraws(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())

	v := h.combat.View()
	assert.Equal(t, rules.StatePlayerTurn, v.State)
	assert.Equal(t, 1, v.Turn)
	assert.Equal(t, 2, v.Reshuffles)
	assert.Equal(t, 10, v.DeckCount, "30 cards minus 15 dealt and 5 drawn")
	require.Len(t, v.Hand, DefaultHandSize)
	for _, card := range v.Hand {
		assert.True(t, card.Revealed)
	}
	require.Len(t, v.Tableau, DefaultTableauSize)
	for i, column := range v.Tableau {
		require.Len(t, column, i+1)
		for j, card := range column {
			assert.Equal(t, j == i, card.Revealed)
			if !card.Revealed {
				assert.Zero(t, card.Rank, "face-down cards hide their rank")
			}
		}
	}
	assert.Equal(t, []string{"Wait"}, v.Enemy.Impending)
	assert.NotEmpty(t, h.views)
	assert.Contains(t, h.presenter.sounds, SoundShuffle)
}

func TestDrawCardsMovesDeckToHand(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	var deckBefore, drawn int
	h.state(func(c *Combat) {
		c.compost.Add(c.hand.takeAll()...)
		deckBefore = c.deck.Size()
		drawn = c.handle.DrawCards(5, true)
	})

	assert.Equal(t, 5, drawn)
	h.state(func(c *Combat) {
		assert.Equal(t, 5, c.hand.Size())
		assert.Equal(t, deckBefore-5, c.deck.Size())
		for _, card := range c.hand.Cards() {
			assert.True(t, card.Revealed)
		}
	})
}

func TestDrawCardsDiscardsHandUnlessKept(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) {
		old := c.hand.Cards()
		c.handle.DrawCards(2, false)
		assert.Equal(t, 2, c.hand.Size())
		for _, card := range old {
			assert.True(t, c.compost.Contains(card))
		}

		c.handle.DrawCards(1, true)
		assert.Equal(t, 3, c.hand.Size())
	})
}

func TestDrawCardsIgnoresNegativeCount(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) {
		deckBefore, handBefore := c.deck.Size(), c.hand.Size()
		assert.Zero(t, c.handle.DrawCards(-3, true))
		assert.Equal(t, deckBefore, c.deck.Size())
		assert.Equal(t, handBefore, c.hand.Size())
	})
}

func TestEndTurnWithoutCardsRequestsConfirmation(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) {
		c.compost.Add(c.deck.takeAll()...)
		c.reshuffles = 0
	})
	before := h.cardIDs()
	view := h.combat.View()

	assert.False(t, h.combat.EndTurn())

	assert.False(t, h.combat.IsProcessingTurn())
	assert.Equal(t, rules.StateAwaitingConfirmation, h.combat.State())
	require.Len(t, h.confirmations, 1)
	after := h.combat.View()
	assert.Equal(t, view.Hand, after.Hand)
	assert.Equal(t, view.Tableau, after.Tableau)
	assert.Equal(t, view.Compost, after.Compost)
	h.requireConserved(before)

	assert.False(t, h.click(HandTarget(h.combat.hand.At(0))), "input is blocked while confirming")

	h.onConfirm()
	assert.Equal(t, 2, h.combat.Reshuffles())
	h.settle()

	assert.Equal(t, rules.StatePlayerTurn, h.combat.State())
	assert.Equal(t, 2, h.combat.View().Turn)
	assert.False(t, h.combat.IsProcessingTurn())
	h.requireConserved(before)
	h.state(func(c *Combat) {
		assert.Equal(t, DefaultHandSize, c.hand.Size())
		assert.Equal(t, 15, c.tableau.CardCount())
		assert.Zero(t, c.manaPools.Total())
	})
}

func TestDeclineRedeal(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) {
		c.compost.Add(c.deck.takeAll()...)
		c.reshuffles = 0
	})

	require.False(t, h.combat.EndTurn())
	assert.True(t, h.combat.DeclineRedeal())
	assert.Equal(t, rules.StatePlayerTurn, h.combat.State())
	assert.False(t, h.combat.DeclineRedeal())

	h.onConfirm()
	assert.Equal(t, rules.StatePlayerTurn, h.combat.State(), "a declined confirmation cannot be accepted later")
	assert.Zero(t, h.combat.Reshuffles())

	assert.False(t, h.combat.EndTurn())
	assert.Len(t, h.confirmations, 2)
}

func TestStaleConfirmationIsIgnored(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) {
		c.compost.Add(c.deck.takeAll()...)
		c.reshuffles = 0
	})
	require.False(t, h.combat.EndTurn())
	confirm := h.onConfirm

	h.start()
	view := h.combat.View()
	confirm()

	assert.Equal(t, rules.StatePlayerTurn, h.combat.State())
	assert.Equal(t, view.DeckCount, h.combat.View().DeckCount)
	assert.Equal(t, 1, h.combat.View().Turn)
}

func TestRedealGathersEveryCard(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) { c.reshuffles = 0 })
	h.combat.AutoBurnAll()
	h.settle()
	before := h.cardIDs()

	require.True(t, h.combat.Redeal())
	assert.True(t, h.combat.IsProcessingTurn())
	h.settle()

	h.requireConserved(before)
	assert.Equal(t, 2, h.combat.Reshuffles())
	h.state(func(c *Combat) {
		assert.Zero(t, c.manaPools.Total())
		assert.Zero(t, c.compost.Size())
		assert.Equal(t, 15, c.tableau.CardCount())
		for i, column := range c.tableau.Columns() {
			for j, card := range column.Cards() {
				assert.Equal(t, j == i, card.Revealed)
			}
		}
	})
}

func TestEndTurnResolvesSummonsThenEnemy(t *testing.T) {
	h := newHarness(t, testProfile(), attackingEnemy(5))
	var guard *Summon
	h.state(func(c *Combat) {
		guard = c.handle.SummonForPlayer(SummonTemplate{
			Name:      "Guard",
			MaxHealth: 10,
			Power:     3,
			Effect: func(h *Handle) {
				h.Opponent(h.ActingSide()).TakeDamage(h.ActingSummon().Power, DamagePhysical)
			},
		})
	})

	require.True(t, h.combat.EndTurn())
	assert.False(t, h.combat.EndTurn(), "a second end turn is rejected")
	assert.True(t, h.combat.IsProcessingTurn())
	assert.Equal(t, rules.StateResolvingSummons, h.combat.State())
	h.state(func(c *Combat) {
		assert.True(t, c.hand.IsEmpty())
		assert.Equal(t, DefaultHandSize, c.compost.Size())
	})

	pacing := h.combat.cfg.PacingDelay
	h.advance(pacing)
	h.state(func(c *Combat) { assert.Equal(t, 17, c.enemy.Health) })
	assert.Equal(t, rules.StateResolvingEnemy, h.combat.State())

	h.advance(pacing)
	assert.Equal(t, 5, guard.Health, "the guard absorbs the attack")
	h.state(func(c *Combat) { assert.Equal(t, 30, c.player.Health) })

	assert.Equal(t, rules.StatePlayerTurn, h.combat.State())
	assert.False(t, h.combat.IsProcessingTurn())
	v := h.combat.View()
	assert.Equal(t, 2, v.Turn)
	assert.Len(t, v.Hand, DefaultHandSize)
	assert.Equal(t, 3, v.Stats.DamageTaken[SideEnemy])
	assert.Equal(t, 5, v.Stats.DamageTaken[SidePlayer])
}

func TestEnemySummonsActAfterActions(t *testing.T) {
	rat := SummonTemplate{
		Name:      "Rat",
		MaxHealth: 1,
		Power:     1,
		Race:      RaceRat,
		Effect: func(h *Handle) {
			h.Opponent(h.ActingSide()).TakeDamage(h.ActingSummon().Power, DamageRanged)
		},
	}
	enemy := &EnemyTemplate{
		Name:      "Rat King",
		MaxHealth: 20,
		Deck: []*EnemyAction{{
			Name:   "Summon Rat",
			Effect: func(h *Handle) { h.SummonForEnemy(rat) },
		}},
	}
	h := newHarness(t, testProfile(), enemy)

	require.True(t, h.combat.EndTurn())
	h.settle()

	h.state(func(c *Combat) {
		require.Len(t, c.enemy.Summons, 1)
		assert.Equal(t, 29, c.player.Health)
	})
}

func TestSummonKilledMidTurnDoesNotAct(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	acted := 0
	h.state(func(c *Combat) {
		var second *Summon
		c.handle.SummonForPlayer(SummonTemplate{
			Name:      "Traitor",
			MaxHealth: 5,
			Effect: func(h *Handle) {
				h.Player().TakeDamage(10, DamageBackstab)
			},
		})
		second = c.handle.SummonForPlayer(SummonTemplate{
			Name:      "Victim",
			MaxHealth: 5,
			Effect:    func(*Handle) { acted++ },
		})
		require.NotNil(t, second)
	})

	require.True(t, h.combat.EndTurn())
	h.settle()

	assert.Zero(t, acted)
	assert.Equal(t, 1, h.combat.View().Stats.SummonsLost[SidePlayer])
}

func TestPlayerDefeat(t *testing.T) {
	h := newHarness(t, testProfile(), attackingEnemy(100))

	require.True(t, h.combat.EndTurn())
	h.settle()

	assert.Equal(t, rules.StatePlayerDefeated, h.combat.State())
	assert.False(t, h.combat.IsProcessingTurn())
	assert.Equal(t, 1, h.playerDefeats)
	assert.Contains(t, h.announcements, "You have been defeated.")
	assert.Contains(t, h.presenter.sounds, SoundDefeat)
	assert.Zero(t, h.profile.Health)
	assert.False(t, h.combat.EndTurn())
	assert.Zero(t, h.clock.Pending())
}

func TestEnemyDefeatShortCircuitsTurn(t *testing.T) {
	h := newHarness(t, testProfile(), attackingEnemy(7))
	h.state(func(c *Combat) {
		c.handle.SummonForPlayer(SummonTemplate{
			Name:      "Assassin",
			MaxHealth: 1,
			Effect: func(h *Handle) {
				h.Enemy().TakeDamage(50, DamageMagic)
			},
		})
	})

	require.True(t, h.combat.EndTurn())
	h.settle()

	assert.Equal(t, rules.StateEnemyDefeated, h.combat.State())
	assert.Equal(t, []string{"Brute"}, h.enemiesDefeated)
	assert.Contains(t, h.announcements, "Brute has been defeated!")
	h.state(func(c *Combat) { assert.Equal(t, 30, c.player.Health, "the enemy never acted") })
}

func TestDefeatSyncsOnlyHealth(t *testing.T) {
	profile := testProfile()
	profile.Gold = 10
	profile.Attack = 1
	h := newHarness(t, profile, idleEnemy())

	h.state(func(c *Combat) {
		c.player.Gold = 999
		c.player.Attack = 42
		c.player.Health = 17
		c.enemy.TakeDamage(100, DamageMagic)
		require.True(t, c.checkDefeat())
	})

	assert.Equal(t, rules.StateEnemyDefeated, h.combat.State())
	assert.Equal(t, 17, profile.Health)
	assert.Equal(t, 10, profile.Gold)
	assert.Equal(t, 1, profile.Attack)
}

func TestSyncToProfileCopiesStatsAndGold(t *testing.T) {
	profile := testProfile()
	player := profile.NewCombatCopy()
	player.Gold = 25
	player.Attack = 3
	player.Health = 12

	player.SyncToProfile()

	assert.Equal(t, 25, profile.Gold)
	assert.Equal(t, 3, profile.Attack)
	assert.Equal(t, 12, profile.Health)
}

func TestReshuffleWhenDeckRunsOut(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	h.state(func(c *Combat) { c.compost.Add(c.deck.takeAll()...) })
	before := h.cardIDs()

	require.True(t, h.combat.EndTurn())
	h.settle()

	assert.Equal(t, 1, h.combat.Reshuffles())
	h.requireConserved(before)
	h.state(func(c *Combat) {
		assert.Equal(t, DefaultHandSize, c.hand.Size())
		assert.Zero(t, c.compost.Size())
	})
}

func TestTurnsConserveCards(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	before := h.cardIDs()

	for i := 0; i < 6; i++ {
		h.combat.AutoBurnAll()
		h.settle()
		if !h.combat.EndTurn() {
			require.Equal(t, rules.StateAwaitingConfirmation, h.combat.State())
			h.onConfirm()
		}
		h.settle()
		h.requireConserved(before)
	}
}

func TestStartWaitsForTurnResolution(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	require.True(t, h.combat.EndTurn())
	require.True(t, h.combat.IsProcessingTurn())

	errs := make(chan error, 1)
	go func() {
		errs <- h.combat.Start(context.Background(), h.profile, h.enemy)
	}()

	select {
	case err := <-errs:
		t.Fatalf("start returned while a turn was resolving: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	h.settle()

	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("start did not resume after the turn resolved")
	}
	assert.Equal(t, 1, h.combat.View().Turn)
}

func TestStartAbortsWhenContextEnds(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	require.True(t, h.combat.EndTurn())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.combat.Start(ctx, h.profile, h.enemy)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartAborted))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStartRejectsMissingParticipants(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	assert.Error(t, h.combat.Start(context.Background(), nil, h.enemy))
	assert.Error(t, h.combat.Start(context.Background(), h.profile, nil))
}

func TestEnemyHasteAddsActions(t *testing.T) {
	enemy := &EnemyTemplate{
		Name:      "Squirrelf",
		MaxHealth: 20,
		Deck:      []*EnemyAction{{Name: "Block"}, {Name: "Haste"}, {Name: "Wait"}},
	}
	e := enemy.NewEnemy()
	e.LoadActions(stableRNG{})
	require.Len(t, e.Impending, 1)
	assert.Equal(t, "Wait", e.Impending[0].Name)

	e.Hasten(1)
	e.LoadActions(stableRNG{})
	require.Len(t, e.Impending, 2)
	assert.Equal(t, "Haste", e.Impending[1].Name, "actions are sampled without replacement")
}

func TestUnsubscribeStopsViews(t *testing.T) {
	h := newHarness(t, testProfile(), idleEnemy())
	count := 0
	unsubscribe := h.combat.Subscribe(func(View) { count++ })

	h.combat.Notify()
	unsubscribe()
	h.combat.Notify()

	assert.Equal(t, 1, count)
}
