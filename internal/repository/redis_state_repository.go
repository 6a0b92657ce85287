package repository

import (
	"context"
	"errors"

	"teams-pollbot/internal/domain/poll"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStateRepository stores the document as a single string key without
// expiry.
type RedisStateRepository struct {
	client *goredis.Client
	key    string
}

func NewRedisStateRepository(client *goredis.Client, key string) *RedisStateRepository {
	return &RedisStateRepository{client: client, key: key}
}

func (r *RedisStateRepository) Load(ctx context.Context) (*poll.State, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return poll.NewState(), nil
		}
		return nil, readFailed("failed to get state key", err)
	}
	return decodeState(data)
}

func (r *RedisStateRepository) Save(ctx context.Context, state *poll.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return writeFailed("failed to set state key", err)
	}
	return nil
}

func (r *RedisStateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
