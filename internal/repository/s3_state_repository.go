package repository

import (
	"context"
	"errors"

	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/internal/storage"
	pollbot_errors "teams-pollbot/pkg/errors"
)

// ObjectStore is the subset of the S3 client the repository needs.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	HeadBucket(ctx context.Context) error
}

var _ ObjectStore = (*storage.Client)(nil)

// S3StateRepository stores the document as one JSON object.
type S3StateRepository struct {
	store ObjectStore
	key   string
}

func NewS3StateRepository(store ObjectStore, key string) *S3StateRepository {
	return &S3StateRepository{store: store, key: key}
}

func (r *S3StateRepository) Load(ctx context.Context) (*poll.State, error) {
	data, err := r.store.GetObject(ctx, r.key)
	if err != nil {
		if errors.Is(err, pollbot_errors.ErrNotFound) {
			return poll.NewState(), nil
		}
		return nil, readFailed("failed to get state object", err)
	}
	return decodeState(data)
}

func (r *S3StateRepository) Save(ctx context.Context, state *poll.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := r.store.PutObject(ctx, r.key, "application/json", data); err != nil {
		return writeFailed("failed to put state object", err)
	}
	return nil
}

func (r *S3StateRepository) Ping(ctx context.Context) error {
	return r.store.HeadBucket(ctx)
}
