package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id   TEXT PRIMARY KEY,
	winner_id  TEXT NOT NULL DEFAULT '',
	winner     TEXT NOT NULL DEFAULT '',
	loser_id   TEXT NOT NULL DEFAULT '',
	loser      TEXT NOT NULL DEFAULT '',
	draw       BOOLEAN NOT NULL DEFAULT FALSE,
	turns      INTEGER NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	ended_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_ended_at_idx ON match_results (ended_at DESC);
`

// PostgresStore stores results in the match_results table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects, verifies the connection and creates the schema.
func NewPostgresStore(ctx context.Context, cfg DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		return nil, errors.New("database url is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
		zap.Int32("max_conns", stats.MaxConns()),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Save inserts r. Saving the same match twice keeps the first result.
func (s *PostgresStore) Save(ctx context.Context, r Result) error {
	if err := r.Validate(); err != nil {
		return errors.Join(ErrInvalidResult, err)
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now().UTC()
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO match_results (match_id, winner_id, winner, loser_id, loser, draw, turns, reason, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (match_id) DO NOTHING`,
		r.MatchID, r.WinnerID, r.Winner, r.LoserID, r.Loser, r.Draw, r.Turns, r.Reason, r.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn("match result already recorded", zap.String("match_id", r.MatchID))
	}
	return nil
}

// Recent returns up to n results, newest first.
func (s *PostgresStore) Recent(ctx context.Context, n int) ([]Result, error) {
	if n <= 0 {
		return []Result{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, winner_id, winner, loser_id, loser, draw, turns, reason, ended_at
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Result, error) {
		var r Result
		err := row.Scan(&r.MatchID, &r.WinnerID, &r.Winner, &r.LoserID, &r.Loser, &r.Draw, &r.Turns, &r.Reason, &r.EndedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}
	return results, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
