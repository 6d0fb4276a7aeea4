package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/game"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no record exists for a player.
var ErrNotFound = errors.New("player not found")

// PlayerRecord is the persisted part of a player profile. Combat writes
// health, stats, armor and gold back to the profile when it ends.
type PlayerRecord struct {
	Name      string
	MaxHealth int
	Health    int
	Gold      int
	Armor     int
	Attack    int
	Agility   int
	Arcane    int
	Appeal    int
	UpdatedAt time.Time
}

// RecordFromProfile captures the persisted fields of a profile.
func RecordFromProfile(p *game.PlayerProfile) *PlayerRecord {
	return &PlayerRecord{
		Name:      p.Name,
		MaxHealth: p.MaxHealth,
		Health:    p.Health,
		Gold:      p.Gold,
		Armor:     p.Armor,
		Attack:    p.Attack,
		Agility:   p.Agility,
		Arcane:    p.Arcane,
		Appeal:    p.Appeal,
	}
}

// ApplyTo copies the record onto a profile, leaving its deck untouched.
func (r *PlayerRecord) ApplyTo(p *game.PlayerProfile) {
	p.Name = r.Name
	p.MaxHealth = r.MaxHealth
	p.Health = r.Health
	p.Gold = r.Gold
	p.Armor = r.Armor
	p.Stats = game.Stats{
		Attack:  r.Attack,
		Agility: r.Agility,
		Arcane:  r.Arcane,
		Appeal:  r.Appeal,
	}
}

// PlayerRepository stores player records by name.
type PlayerRepository interface {
	Get(ctx context.Context, name string) (*PlayerRecord, error)
	Save(ctx context.Context, record *PlayerRecord) error
	Delete(ctx context.Context, name string) error
	Close() error
}

const createPlayersTable = `CREATE TABLE IF NOT EXISTS players (
	name       TEXT PRIMARY KEY,
	max_health INTEGER NOT NULL,
	health     INTEGER NOT NULL,
	gold       INTEGER NOT NULL,
	armor      INTEGER NOT NULL,
	attack     INTEGER NOT NULL,
	agility    INTEGER NOT NULL,
	arcane     INTEGER NOT NULL,
	appeal     INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Open creates the repository selected by the database configuration.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (PlayerRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory player repository")
		return NewMemoryRepository(), nil
	case config.DriverPostgres:
		return NewPostgresRepository(ctx, cfg, logger)
	case config.DriverSQLite:
		return NewSQLiteRepository(ctx, cfg.URL, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
