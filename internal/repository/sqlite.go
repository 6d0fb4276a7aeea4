package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stores player records in a SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens the database at dsn and creates the players
// table if needed. Use ":memory:" for a throwaway database.
func NewSQLiteRepository(ctx context.Context, dsn string, logger *zap.Logger) (*SQLiteRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createPlayersTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create players table: %w", err)
	}

	logger.Info("sqlite player repository opened", zap.String("dsn", dsn))
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*PlayerRecord, error) {
	var rec PlayerRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT name, max_health, health, gold, armor, attack, agility, arcane, appeal, updated_at
		FROM players WHERE name = ?`, name).Scan(
		&rec.Name, &rec.MaxHealth, &rec.Health, &rec.Gold, &rec.Armor,
		&rec.Attack, &rec.Agility, &rec.Arcane, &rec.Appeal, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", name, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, rec *PlayerRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (name, max_health, health, gold, armor, attack, agility, arcane, appeal, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			max_health = excluded.max_health,
			health = excluded.health,
			gold = excluded.gold,
			armor = excluded.armor,
			attack = excluded.attack,
			agility = excluded.agility,
			arcane = excluded.arcane,
			appeal = excluded.appeal,
			updated_at = excluded.updated_at`,
		rec.Name, rec.MaxHealth, rec.Health, rec.Gold, rec.Armor,
		rec.Attack, rec.Agility, rec.Arcane, rec.Appeal, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", rec.Name, err)
	}
	r.logger.Debug("saved player", zap.String("player", rec.Name))
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player %s: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
