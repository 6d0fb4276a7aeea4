package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koacards/koa-server-go/internal/config"
	"go.uber.org/zap"
)

// PostgresRepository stores player records in PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository connects to the database and creates the players
// table if needed.
func NewPostgresRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createPlayersTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create players table: %w", err)
	}

	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("max_conns", stats.MaxConns()),
	)
	return &PostgresRepository{pool: pool, logger: logger}, nil
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (*PlayerRecord, error) {
	var rec PlayerRecord
	err := r.pool.QueryRow(ctx, `
		SELECT name, max_health, health, gold, armor, attack, agility, arcane, appeal, updated_at
		FROM players WHERE name = $1`, name).Scan(
		&rec.Name, &rec.MaxHealth, &rec.Health, &rec.Gold, &rec.Armor,
		&rec.Attack, &rec.Agility, &rec.Arcane, &rec.Appeal, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", name, err)
	}
	return &rec, nil
}

func (r *PostgresRepository) Save(ctx context.Context, rec *PlayerRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (name, max_health, health, gold, armor, attack, agility, arcane, appeal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO UPDATE SET
			max_health = EXCLUDED.max_health,
			health = EXCLUDED.health,
			gold = EXCLUDED.gold,
			armor = EXCLUDED.armor,
			attack = EXCLUDED.attack,
			agility = EXCLUDED.agility,
			arcane = EXCLUDED.arcane,
			appeal = EXCLUDED.appeal,
			updated_at = EXCLUDED.updated_at`,
		rec.Name, rec.MaxHealth, rec.Health, rec.Gold, rec.Armor,
		rec.Attack, rec.Agility, rec.Arcane, rec.Appeal, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save player %s: %w", rec.Name, err)
	}
	r.logger.Debug("saved player", zap.String("player", rec.Name))
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM players WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
