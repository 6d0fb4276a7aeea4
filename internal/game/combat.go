package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game/mana"
	"github.com/koacards/koa-server-go/internal/game/rules"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/koacards/koa-server-go/internal/game/watchers"
	"go.uber.org/zap"
)

// Side identifies one of the two combatants.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
)

// Sound is a cue for the presentation layer.
type Sound string

const (
	SoundDraw    Sound = "draw"
	SoundMove    Sound = "move"
	SoundBurn    Sound = "burn"
	SoundCast    Sound = "cast"
	SoundShuffle Sound = "shuffle"
	SoundVictory Sound = "victory"
	SoundDefeat  Sound = "defeat"
)

// Config holds the pacing delays and per-combat constants.
type Config struct {
	MoveDelay   time.Duration
	BurnDelay   time.Duration
	CastDelay   time.Duration // used when a spell has no animation time of its own
	PacingDelay time.Duration
	Reshuffles  int
}

// DefaultConfig returns the standard combat timings.
func DefaultConfig() Config {
	return Config{
		MoveDelay:   450 * time.Millisecond,
		BurnDelay:   1200 * time.Millisecond,
		CastDelay:   DefaultAnimationTime,
		PacingDelay: 500 * time.Millisecond,
		Reshuffles:  2,
	}
}

// Presenter receives animation cues. Calls are made after the combat lock is released.
type Presenter interface {
	ShowNumber(side Side, amount int, kind NumberKind)
	PlaySound(sound Sound)
}

// Confirmer asks the player to confirm an action. The engine resumes from onConfirm.
type Confirmer interface {
	RequestConfirmation(message string, onConfirm func())
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(message string, onConfirm func())

// RequestConfirmation calls f.
func (f ConfirmerFunc) RequestConfirmation(message string, onConfirm func()) {
	f(message, onConfirm)
}

// Hooks are single-callback notifications for combat outcomes. Each is
// invoked after the combat lock is released, so hooks may call back into the combat.
type Hooks struct {
	OnEnemyDefeated         func(enemy string)
	OnEnemyDefeatedContinue func()
	OnPlayerDefeated        func()
	Announce                func(message string)
}

// Option configures a Combat.
type Option func(*Combat)

// WithClock sets the clock driving animation and pacing delays.
func WithClock(clock schedule.Clock) Option {
	return func(c *Combat) { c.clock = clock }
}

// WithRNG sets the random source for shuffles and enemy rolls.
func WithRNG(rng RNG) Option {
	return func(c *Combat) { c.rng = rng }
}

// WithConfig overrides the default timings.
func WithConfig(cfg Config) Option {
	return func(c *Combat) { c.cfg = cfg }
}

// WithHooks sets the outcome hooks.
func WithHooks(hooks Hooks) Option {
	return func(c *Combat) { c.hooks = hooks }
}

// WithConfirmer sets the confirmation collaborator.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Combat) { c.confirmer = confirmer }
}

// WithPresenter sets the animation collaborator.
func WithPresenter(presenter Presenter) Option {
	return func(c *Combat) { c.presenter = presenter }
}

// ErrStartAborted is returned by Start when its context ends while waiting
// for an in-flight turn to finish.
var ErrStartAborted = errors.New("combat start aborted")

// Combat is a reusable combat session. It is created once and reset by Start.
//
// All state is guarded by mu. Delayed work runs through the scheduler, which
// takes mu and drops callbacks scheduled before the latest Start. Subscribers,
// hooks and collaborators are queued while mu is held and called after it is
// released, in the order they were queued.
type Combat struct {
	mu sync.Mutex

	id        uuid.UUID
	logger    *zap.Logger
	cfg       Config
	clock     schedule.Clock
	rng       RNG
	scheduler *schedule.Scheduler
	hooks     Hooks
	confirmer Confirmer
	presenter Presenter
	handle    *Handle

	turn     *rules.TurnMachine
	events   *rules.EventBus
	watchers *rules.WatcherRegistry
	spells   *watchers.SpellsCastWatcher
	burned   *watchers.CardsBurnedWatcher
	drawn    *watchers.CardsDrawnWatcher
	damage   *watchers.DamageTakenWatcher
	losses   *watchers.SummonsDiedWatcher

	profile   *PlayerProfile
	player    *Player
	enemy     *Enemy
	deck      *DrawPile
	hand      *Hand
	compost   *CompostPile
	trash     *TrashPile
	tableau   *Tableau
	manaPools *ManaPools
	diamonds  *mana.Wallet

	selected     *Card
	inFlight     map[uuid.UUID]struct{}
	actingSide   Side
	actingSummon *Summon
	autoBurning  bool
	reshuffles   int
	processing   bool
	turnDone     chan struct{}
	started      bool

	subscribers []subscriber
	nextSub     int
	outbox      []func()
}

type subscriber struct {
	id int
	fn func(View)
}

// NewCombat creates an idle combat session.
func NewCombat(logger *zap.Logger, opts ...Option) *Combat {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Combat{
		id:        uuid.New(),
		logger:    logger,
		cfg:       DefaultConfig(),
		turn:      rules.NewTurnMachine(),
		events:    rules.NewEventBus(),
		watchers:  rules.NewWatcherRegistry(),
		spells:    watchers.NewSpellsCastWatcher(),
		burned:    watchers.NewCardsBurnedWatcher(),
		drawn:     watchers.NewCardsDrawnWatcher(),
		damage:    watchers.NewDamageTakenWatcher(),
		losses:    watchers.NewSummonsDiedWatcher(),
		deck:      NewDrawPile(),
		hand:      NewHand(),
		compost:   NewCompostPile(),
		trash:     NewTrashPile(),
		tableau:   NewTableau(DefaultTableauSize),
		manaPools: NewManaPools(ElementalSuits...),
		diamonds:  mana.NewWallet(0),
		inFlight:  make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = schedule.NewRealClock()
	}
	if c.rng == nil {
		c.rng = NewRNG()
	}
	c.scheduler = schedule.NewScheduler(c.clock, c.mu.Lock, c.unlock)
	c.handle = &Handle{c: c}

	for _, w := range []rules.Watcher{c.spells, c.burned, c.drawn, c.damage, c.losses} {
		c.watchers.AddWatcher(w)
	}
	c.events.Subscribe(c.watchers.NotifyWatchers)
	c.logger = c.logger.With(zap.String("combat_id", c.id.String()))
	return c
}

// ID returns the session identifier.
func (c *Combat) ID() string {
	return c.id.String()
}

// Events returns the combat's event bus. Listeners run while the combat lock
// is held and must not call back into the combat.
func (c *Combat) Events() *rules.EventBus {
	return c.events
}

// Start resets the session for a new combat against the enemy. If a turn is
// still resolving, Start waits for it to finish or for ctx to end.
func (c *Combat) Start(ctx context.Context, profile *PlayerProfile, enemy *EnemyTemplate) error {
	if profile == nil || enemy == nil {
		return fmt.Errorf("start combat: player and enemy are required")
	}

	for {
		c.mu.Lock()
		if !c.processing {
			break
		}
		done := c.turnDone
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrStartAborted, ctx.Err())
		}
	}
	defer c.unlock()

	version := c.scheduler.Retire()
	c.reset(profile, enemy)

	c.deck.Shuffle(c.rng)
	c.tableau.Deal(c.deck)
	c.mustFire(rules.TransitionDeal)
	c.publish(rules.NewEvent(rules.EventCombatStarted, c.enemy.Name, string(SidePlayer)))
	c.sound(SoundShuffle)
	c.startTurn(false)
	c.notify()

	c.logger.Info("combat started",
		zap.Uint64("version", version),
		zap.String("player", profile.Name),
		zap.String("enemy", enemy.Name),
		zap.Int("deck_size", len(profile.Deck)),
	)
	return nil
}

// reset rebuilds every pile and combatant from the profile and enemy template.
func (c *Combat) reset(profile *PlayerProfile, enemy *EnemyTemplate) {
	c.profile = profile
	c.player = profile.NewCombatCopy()
	c.player.observer = c
	c.enemy = enemy.NewEnemy()
	c.enemy.observer = c

	c.deck.Clear()
	c.hand.Clear()
	c.compost.Clear()
	c.trash.Clear()
	if c.tableau.Size() != profile.tableauSize() {
		c.tableau = NewTableau(profile.tableauSize())
	} else {
		c.tableau.takeAll()
	}
	c.manaPools.takeAll()
	c.diamonds.Set(profile.ManaDiamonds)

	c.selected = nil
	c.inFlight = make(map[uuid.UUID]struct{})
	c.autoBurning = false
	c.reshuffles = c.cfg.Reshuffles
	c.processing = false
	c.turnDone = nil
	c.started = true

	c.watchers.ResetWatchers()
	c.turn.Reset()

	for _, spec := range profile.Deck {
		c.deck.Add(spec.NewCard())
	}
}

// Version returns the current combat generation. It increases on every Start.
func (c *Combat) Version() uint64 {
	return c.scheduler.Generation()
}

// State returns the current turn state.
func (c *Combat) State() rules.TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turn.Current()
}

// IsProcessingTurn reports whether an end-of-turn resolution is in flight.
func (c *Combat) IsProcessingTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Reshuffles returns the number of free reshuffles left.
func (c *Combat) Reshuffles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reshuffles
}

// SelectedCard returns the currently selected card, if any.
func (c *Combat) SelectedCard() *Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Subscribe registers fn to receive a view after every visible state change.
// The returned function removes the subscription.
func (c *Combat) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Notify pushes the current view to every subscriber.
func (c *Combat) Notify() {
	c.mu.Lock()
	defer c.unlock()
	c.notify()
}

// unlock releases mu and then runs everything queued while it was held.
func (c *Combat) unlock() {
	pending := c.outbox
	c.outbox = nil
	c.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// later queues fn to run once mu is released.
func (c *Combat) later(fn func()) {
	c.outbox = append(c.outbox, fn)
}

// after schedules fn under the combat lock, fenced by the current version.
func (c *Combat) after(d time.Duration, fn func()) {
	c.scheduler.After(d, fn)
}

func (c *Combat) notify() {
	if len(c.subscribers) == 0 {
		return
	}
	view := c.buildView()
	subs := append([]subscriber(nil), c.subscribers...)
	c.later(func() {
		for _, s := range subs {
			s.fn(view)
		}
	})
}

func (c *Combat) publish(evt rules.Event) {
	c.events.Publish(evt)
}

func (c *Combat) sound(s Sound) {
	if c.presenter == nil {
		return
	}
	presenter := c.presenter
	c.later(func() { presenter.PlaySound(s) })
}

func (c *Combat) announce(message string) {
	c.logger.Debug("announce", zap.String("message", message))
	if c.hooks.Announce == nil {
		return
	}
	announce := c.hooks.Announce
	c.later(func() { announce(message) })
}

// mustFire applies a turn transition the engine has already validated.
// A failure means the engine's own bookkeeping is broken.
func (c *Combat) mustFire(t rules.Transition) {
	if err := c.turn.Fire(t); err != nil {
		c.logger.Error("invalid turn transition", zap.Error(err))
		panic(err)
	}
}

// acceptingInput reports whether player actions may start.
func (c *Combat) acceptingInput() bool {
	return c.started && !c.processing && c.turn.Is(rules.StatePlayerTurn)
}

func (c *Combat) sideOf(cb *Combatant) Side {
	if c.enemy != nil && cb == &c.enemy.Combatant {
		return SideEnemy
	}
	return SidePlayer
}

// number implements combatantObserver.
func (c *Combat) number(cb *Combatant, amount int, kind NumberKind) {
	side := c.sideOf(cb)
	switch kind {
	case NumberBlockGain:
		c.publish(rules.NewEventWithAmount(rules.EventBlockGained, string(side), "", amount))
	case NumberHeal:
		c.publish(rules.NewEventWithAmount(rules.EventHealed, string(side), "", amount))
	}
	if c.presenter == nil {
		return
	}
	presenter := c.presenter
	c.later(func() { presenter.ShowNumber(side, amount, kind) })
}

// summonDied implements combatantObserver.
func (c *Combat) summonDied(cb *Combatant, s *Summon) {
	evt := rules.NewEvent(rules.EventSummonDied, s.ID.String(), string(c.sideOf(cb)))
	evt.Data = s.Name
	c.publish(evt)
}

// damaged implements combatantObserver.
func (c *Combat) damaged(cb *Combatant, result DamageResult) {
	evt := rules.NewEventWithAmount(rules.EventDamageDealt, string(c.sideOf(cb)), "", result.Total())
	evt.Metadata["health_lost"] = fmt.Sprint(result.HealthLost)
	evt.Metadata["block_lost"] = fmt.Sprint(result.BlockLost)
	c.publish(evt)
}

func (c *Combat) markInFlight(card *Card) {
	c.inFlight[card.ID] = struct{}{}
}

func (c *Combat) clearInFlight(card *Card) {
	delete(c.inFlight, card.ID)
}

func (c *Combat) isInFlight(card *Card) bool {
	_, ok := c.inFlight[card.ID]
	return ok
}
