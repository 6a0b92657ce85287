package repository

import (
	"context"
	"time"

	"teams-pollbot/internal/domain/poll"
)

// timeoutRepository bounds every call to a remote store.
type timeoutRepository struct {
	StateRepository
	timeout time.Duration
}

// WithTimeout wraps repo so each Load and Save runs under its own deadline.
// A non-positive timeout returns repo unchanged.
func WithTimeout(repo StateRepository, timeout time.Duration) StateRepository {
	if timeout <= 0 {
		return repo
	}
	return &timeoutRepository{StateRepository: repo, timeout: timeout}
}

func (r *timeoutRepository) Load(ctx context.Context) (*poll.State, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.StateRepository.Load(ctx)
}

func (r *timeoutRepository) Save(ctx context.Context, state *poll.State) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.StateRepository.Save(ctx, state)
}
