package repository

import (
	"context"
	"errors"
	"fmt"

	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStateRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStateRepository(pool *pgxpool.Pool) *PostgresStateRepository {
	return &PostgresStateRepository{pool: pool}
}

func (r *PostgresStateRepository) Load(ctx context.Context) (*poll.State, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT document FROM poll_state WHERE id = $1`, database.StateRowID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return poll.NewState(), nil
		}
		return nil, readFailed("failed to select state", explainPgError(err))
	}
	return decodeState(data)
}

func (r *PostgresStateRepository) Save(ctx context.Context, state *poll.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO poll_state (id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		database.StateRowID, data,
	)
	if err != nil {
		return writeFailed("failed to upsert state", explainPgError(err))
	}
	return nil
}

func (r *PostgresStateRepository) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, r.pool)
}

func explainPgError(err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%w (run `migrate up` first)", err)
	}
	return err
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}
