package repository

import (
	"context"

	"teams-pollbot/internal/domain/poll"
)

// StateRepository loads and saves the whole poll document. Load returns an
// empty state when nothing has been saved yet; any other failure is reported
// as an error wrapping pollbot_errors.ErrStorageReadFailed. Save failures wrap
// pollbot_errors.ErrStorageWriteFailed.
type StateRepository interface {
	Load(ctx context.Context) (*poll.State, error)
	Save(ctx context.Context, state *poll.State) error
}

// HealthChecker is implemented by repositories backed by a remote service.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a plain function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
