package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/catalog"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/game/rules"
	"github.com/koacards/koa-server-go/internal/repository"
	"go.uber.org/zap"
)

// State is the progress of a player's run.
type State int

const (
	StateInCombat State = iota
	StateVictory
	StateDefeated
	StateComplete
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInCombat:
		return "IN_COMBAT"
	case StateVictory:
		return "VICTORY"
	case StateDefeated:
		return "DEFEATED"
	case StateComplete:
		return "COMPLETE"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Output receives everything a session wants to show its player. Calls are
// made without any session or combat lock held.
type Output interface {
	SendView(v game.View)
	SendNumber(side game.Side, amount int, kind game.NumberKind)
	SendSound(sound game.Sound)
	SendAnnouncement(message string)
	SendConfirmation(message string)
}

// Snapshot captures session data for external use.
type Snapshot struct {
	ID           string
	PlayerName   string
	State        State
	Stage        int
	Enemy        string
	CombatID     string
	CreateTime   time.Time
	LastActivity time.Time
}

// Session is one player's run through the enemy roster. It owns a single
// Combat that is restarted for every fight.
type Session struct {
	ID         string
	PlayerName string
	CreateTime time.Time

	combat  *game.Combat
	manager *Manager
	logger  *zap.Logger

	mu           sync.RWMutex
	profile      *game.PlayerProfile
	state        State
	stage        int
	enemy        string
	lastActivity time.Time
	out          Output
	confirm      func()
	detachReplay func()
	unsubscribe  func()
}

func newSession(m *Manager, playerName string, profile *game.PlayerProfile) *Session {
	now := m.clock.Now()
	s := &Session{
		ID:           uuid.New().String(),
		PlayerName:   playerName,
		CreateTime:   now,
		manager:      m,
		profile:      profile,
		lastActivity: now,
	}
	s.logger = m.logger.With(zap.String("session_id", s.ID), zap.String("player", playerName))

	opts := []game.Option{
		game.WithConfig(m.cfg.Combat),
		game.WithClock(m.clock),
		game.WithRNG(m.newRNG()),
		game.WithPresenter(s),
		game.WithConfirmer(s),
		game.WithHooks(game.Hooks{
			OnEnemyDefeated:         s.onEnemyDefeated,
			OnEnemyDefeatedContinue: s.onContinue,
			OnPlayerDefeated:        s.onPlayerDefeated,
			Announce:                s.announce,
		}),
	}
	s.combat = game.NewCombat(s.logger, opts...)
	s.unsubscribe = s.combat.Subscribe(s.sendView)
	if m.replays != nil {
		s.detachReplay = m.replays.Attach(s.combat)
	}
	return s
}

// Combat returns the session's combat.
func (s *Session) Combat() *game.Combat {
	return s.combat
}

// Profile returns the persistent player profile.
func (s *Session) Profile() *game.PlayerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Stage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Attach routes the session's output to out and sends it the current view.
// A nil out detaches the current output.
func (s *Session) Attach(out Output) {
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
	if out != nil {
		out.SendView(s.combat.View())
	}
}

// Detach removes out if it is still the session's output.
func (s *Session) Detach(out Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == out {
		s.out = nil
	}
}

func (s *Session) output() Output {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out
}

// Touch records player activity, extending the session lease.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.manager.clock.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// startStage starts the fight for the given roster stage.
func (s *Session) startStage(ctx context.Context, stage int) error {
	enemy := catalog.EnemyAt(stage)

	s.mu.Lock()
	s.stage = stage
	s.enemy = enemy.Name
	s.state = StateInCombat
	profile := s.profile
	s.mu.Unlock()

	if err := s.combat.Start(ctx, profile, enemy); err != nil {
		return fmt.Errorf("failed to start stage %d: %w", stage, err)
	}
	s.logger.Info("stage started",
		zap.Int("stage", stage),
		zap.String("enemy", enemy.Name),
	)
	return nil
}

// Restart begins a new run from the first enemy at full health.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.profile.Health = s.profile.MaxHealth
	s.mu.Unlock()
	return s.startStage(ctx, 0)
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:           s.ID,
		PlayerName:   s.PlayerName,
		State:        s.state,
		Stage:        s.stage,
		Enemy:        s.enemy,
		CombatID:     s.combat.ID(),
		CreateTime:   s.CreateTime,
		LastActivity: s.lastActivity,
	}
}

func (s *Session) sendView(v game.View) {
	if out := s.output(); out != nil {
		out.SendView(v)
	}
}

// ShowNumber implements game.Presenter.
func (s *Session) ShowNumber(side game.Side, amount int, kind game.NumberKind) {
	if out := s.output(); out != nil {
		out.SendNumber(side, amount, kind)
	}
}

// PlaySound implements game.Presenter.
func (s *Session) PlaySound(sound game.Sound) {
	if out := s.output(); out != nil {
		out.SendSound(sound)
	}
}

// RequestConfirmation implements game.Confirmer. onConfirm is kept until the
// player answers with a confirm or decline command.
func (s *Session) RequestConfirmation(message string, onConfirm func()) {
	s.mu.Lock()
	s.confirm = onConfirm
	out := s.out
	s.mu.Unlock()
	if out != nil {
		out.SendConfirmation(message)
	}
}

// answerConfirmation consumes the pending confirmation. Accepting runs the
// callback the combat handed out, which ignores answers to a combat that has
// since been restarted. It reports whether the combat left the confirmation
// state.
func (s *Session) answerConfirmation(accept bool) bool {
	s.mu.Lock()
	onConfirm := s.confirm
	s.confirm = nil
	s.mu.Unlock()

	if !accept {
		return s.combat.DeclineRedeal()
	}
	if onConfirm == nil || s.combat.State() != rules.StateAwaitingConfirmation {
		return false
	}
	onConfirm()
	return s.combat.State() != rules.StateAwaitingConfirmation
}

func (s *Session) announce(message string) {
	if out := s.output(); out != nil {
		out.SendAnnouncement(message)
	}
}

func (s *Session) onEnemyDefeated(enemy string) {
	s.mu.Lock()
	s.state = StateVictory
	s.mu.Unlock()

	s.logger.Info("enemy defeated", zap.String("enemy", enemy))
	s.persist()
}

func (s *Session) onPlayerDefeated() {
	s.mu.Lock()
	s.state = StateDefeated
	s.mu.Unlock()

	s.logger.Info("player defeated")
	s.persist()
}

// onContinue moves on to the next enemy, or finishes the run after the last.
func (s *Session) onContinue() {
	next := s.Stage() + 1
	if next >= len(catalog.EnemyNames()) {
		s.mu.Lock()
		s.state = StateComplete
		s.mu.Unlock()
		s.announce("Every enemy has been defeated!")
		s.logger.Info("run complete")
		return
	}
	if err := s.startStage(context.Background(), next); err != nil {
		s.logger.Error("failed to start next stage", zap.Error(err))
	}
}

// persist saves the profile and the finished fight's replay.
func (s *Session) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), s.manager.cfg.SaveTimeout)
	defer cancel()

	if repo := s.manager.repo; repo != nil {
		if err := repo.Save(ctx, repository.RecordFromProfile(s.Profile())); err != nil {
			s.logger.Error("failed to save player", zap.Error(err))
		}
	}
	if replays := s.manager.replays; replays != nil {
		if err := replays.SaveReplay(s.combat.ID()); err != nil {
			s.logger.Warn("failed to save replay", zap.Error(err))
		}
	}
}

// close detaches the session from its output and recorders.
func (s *Session) close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.out = nil
	detach, unsubscribe := s.detachReplay, s.unsubscribe
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if detach != nil {
		detach()
	}
	if replays := s.manager.replays; replays != nil {
		replays.ClearReplay(s.combat.ID())
	}
	s.logger.Info("session closed")
}
