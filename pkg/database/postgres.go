package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StateTable = "poll_state"

	// StateRowID is the key of the single row holding the document.
	StateRowID = 1
)

var migrationsUp = []string{
	`CREATE TABLE IF NOT EXISTS poll_state (
		id         SMALLINT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

var migrationsDown = []string{
	`DROP TABLE IF EXISTS poll_state`,
}

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool settings
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// MigrateUp creates the state table.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	return execAll(ctx, pool, migrationsUp)
}

// MigrateDown drops the state table and everything in it.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	return execAll(ctx, pool, migrationsDown)
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("database not initialized")
	}
	return pool.Ping(ctx)
}

func execAll(ctx context.Context, pool *pgxpool.Pool, statements []string) error {
	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}
	return nil
}

// TableExists reports whether a table is present in the current schema.
func TableExists(ctx context.Context, pool *pgxpool.Pool, table string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`,
		table,
	).Scan(&exists)
	return exists, err
}

// StateUpdatedAt returns when the document was last written, or nil when no
// document has been saved.
func StateUpdatedAt(ctx context.Context, pool *pgxpool.Pool) (*time.Time, error) {
	var updatedAt time.Time
	err := pool.QueryRow(ctx, `SELECT updated_at FROM poll_state WHERE id = $1`, StateRowID).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updatedAt, nil
}
