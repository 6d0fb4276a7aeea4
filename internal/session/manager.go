package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/koacards/koa-server-go/internal/catalog"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/koacards/koa-server-go/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session closed")
	ErrTooManySessions  = errors.New("too many sessions")
	ErrPlayerNameNeeded = errors.New("player name is required")
)

// Config controls session creation and expiry.
type Config struct {
	Combat        game.Config
	LeasePeriod   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	SaveTimeout   time.Duration
	// DefaultPlayer is used when a session is created without a name.
	DefaultPlayer string
	// Seed makes every combat's RNG deterministic when non-zero.
	Seed uint64
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		Combat:        game.DefaultConfig(),
		LeasePeriod:   5 * time.Minute,
		SweepInterval: 30 * time.Second,
		MaxSessions:   1000,
		SaveTimeout:   5 * time.Second,
	}
}

// ProfileFunc builds a fresh profile for a new player.
type ProfileFunc func(name string) (*game.PlayerProfile, error)

// DefaultProfiles builds profiles from the default starting deck.
func DefaultProfiles(name string) (*game.PlayerProfile, error) {
	p := catalog.DefaultProfile()
	p.Name = name
	return p, nil
}

// DeckListProfiles builds profiles from a deck list file.
func DeckListProfiles(path string) ProfileFunc {
	return func(name string) (*game.PlayerProfile, error) {
		p, err := catalog.LoadDeckList(path)
		if err != nil {
			return nil, err
		}
		p.Name = name
		return p, nil
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock shared by every session's combat.
func WithClock(clock schedule.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithRepository persists player records between sessions.
func WithRepository(repo repository.PlayerRepository) Option {
	return func(m *Manager) { m.repo = repo }
}

// WithReplays records every session's fights.
func WithReplays(recorder *game.ReplayRecorder) Option {
	return func(m *Manager) { m.replays = recorder }
}

// WithRNG sets the random source factory used for each new combat.
func WithRNG(fn func() game.RNG) Option {
	return func(m *Manager) { m.rngSource = fn }
}

// WithProfiles sets how new players' profiles are built.
func WithProfiles(fn ProfileFunc) Option {
	return func(m *Manager) { m.profiles = fn }
}

// Manager manages player sessions
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *zap.Logger

	cfg       Config
	clock     schedule.Clock
	repo      repository.PlayerRepository
	replays   *game.ReplayRecorder
	profiles  ProfileFunc
	rngSource func() game.RNG
	seeds     uint64
	seedMu    sync.Mutex
}

// NewManager creates a new session manager
func NewManager(cfg Config, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultConfig().SaveTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
		cfg:      cfg,
		profiles: DefaultProfiles,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = schedule.NewRealClock()
	}
	return m
}

// newRNG returns the random source for the next combat. Seeded managers
// derive one seed per session so replays can be reproduced.
func (m *Manager) newRNG() game.RNG {
	if m.rngSource != nil {
		return m.rngSource()
	}
	if m.cfg.Seed == 0 {
		return game.NewRNG()
	}
	m.seedMu.Lock()
	defer m.seedMu.Unlock()
	seed := m.cfg.Seed + m.seeds
	m.seeds++
	return game.NewSeededRNG(seed)
}

// loadProfile restores a saved player or builds a new one.
func (m *Manager) loadProfile(ctx context.Context, name string) (*game.PlayerProfile, error) {
	profile, err := m.profiles(name)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile: %w", err)
	}
	if m.repo == nil {
		return profile, nil
	}

	rec, err := m.repo.Get(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return profile, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	rec.ApplyTo(profile)
	if profile.Health <= 0 {
		profile.Health = profile.MaxHealth
	}
	return profile, nil
}

// CreateSession creates a session for the player and starts the first fight.
func (m *Manager) CreateSession(ctx context.Context, playerName string) (*Session, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = m.cfg.DefaultPlayer
	}
	if playerName == "" {
		return nil, ErrPlayerNameNeeded
	}
	if m.cfg.MaxSessions > 0 && m.Count() >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	profile, err := m.loadProfile(ctx, playerName)
	if err != nil {
		return nil, err
	}

	s := newSession(m, playerName, profile)
	if err := s.startStage(ctx, 0); err != nil {
		s.close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("player", playerName),
		zap.String("combat_id", s.combat.ID()),
	)
	return s, nil
}

// GetSession retrieves a session by ID
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// RemoveSession closes and removes a session
func (m *Manager) RemoveSession(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	m.logger.Info("session removed", zap.String("session_id", sessionID))
	return nil
}

// GetAllSessions returns snapshots of all sessions
func (m *Manager) GetAllSessions() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.Snapshot())
	}
	return snapshots
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle removes every session idle for longer than the lease period
// and returns how many were removed.
func (m *Manager) ExpireIdle() int {
	if m.cfg.LeasePeriod <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.cfg.LeasePeriod)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.logger.Info("session expired",
			zap.String("session_id", s.ID),
			zap.String("player", s.PlayerName),
		)
	}
	return len(expired)
}

// CleanupExpiredSessions sweeps idle sessions until ctx is done.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.ExpireIdle(); n > 0 {
				m.logger.Debug("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	m.logger.Info("all sessions closed", zap.Int("count", len(sessions)))
}
