// Package store persists ingested sales records, the upload history and
// per-branch targets in PostgreSQL.
//
// Queries are built with squirrel and executed on a pgx pool. Records of one
// upload are written in a single transaction with COPY, so an upload is
// either fully stored or not at all.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/salesboard/internal/config"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUploadNotFound is returned when an upload ID has no history row.
	ErrUploadNotFound = errors.New("upload not found")

	// ErrAlreadyRolledBack is returned when rolling back an upload twice.
	ErrAlreadyRolledBack = errors.New("upload already rolled back")

	// ErrUploadNotCompleted is returned when rolling back a failed upload,
	// which never stored any records.
	ErrUploadNotCompleted = errors.New("upload did not complete")
)

// psql builds statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store is the PostgreSQL-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open parses the database URL, applies pool limits from cfg, connects and
// pings the server.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS sales_uploads (
    id             UUID PRIMARY KEY,
    file_name      TEXT NOT NULL,
    status         TEXT NOT NULL,
    rows_read      INTEGER NOT NULL DEFAULT 0,
    records        INTEGER NOT NULL DEFAULT 0,
    skipped        INTEGER NOT NULL DEFAULT 0,
    error          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    rolled_back_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sales_records (
    id           BIGSERIAL PRIMARY KEY,
    upload_id    UUID NOT NULL REFERENCES sales_uploads (id) ON DELETE CASCADE,
    sale_date    TEXT NOT NULL,
    branch       TEXT NOT NULL,
    channel      TEXT NOT NULL,
    sales_value  DOUBLE PRECISION NOT NULL DEFAULT 0,
    orders_count BIGINT NOT NULL DEFAULT 0,
    target_value DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS sales_records_upload_idx ON sales_records (upload_id);
CREATE INDEX IF NOT EXISTS sales_records_date_idx ON sales_records (sale_date);

CREATE TABLE IF NOT EXISTS branch_targets (
    branch_name  TEXT PRIMARY KEY,
    target_value DOUBLE PRECISION NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
