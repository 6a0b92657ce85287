package bootstrap

import (
	"context"
	"fmt"

	"teams-pollbot/config"
	"teams-pollbot/internal/repository"
	"teams-pollbot/internal/repository/ttadapter"
	"teams-pollbot/internal/storage"
	"teams-pollbot/pkg/database"

	goredis "github.com/redis/go-redis/v9"
)

type Store struct {
	Repo     repository.StateRepository
	Checkers map[string]repository.HealthChecker
	Close    func()
}

// OpenStore builds the state repository selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, redisClient *goredis.Client) (*Store, error) {
	s := &Store{Checkers: map[string]repository.HealthChecker{}, Close: func() {}}

	switch cfg.StoreDriver {
	case config.StoreFile:
		s.Repo = repository.NewFileStateRepository(cfg.DBFilePath)

	case config.StoreMemory:
		s.Repo = repository.NewMemoryStateRepository()

	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		repo := repository.NewPostgresStateRepository(pool)
		s.Repo = repo
		s.Checkers["postgres"] = repo
		s.Close = pool.Close

	case config.StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis store needs a redis client")
		}
		s.Repo = repository.NewRedisStateRepository(redisClient, cfg.RedisStateKey)

	case config.StoreS3:
		client, err := storage.NewClient(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		repo := repository.NewS3StateRepository(client, cfg.S3ObjectKey)
		s.Repo = repo
		s.Checkers["s3"] = repo

	case config.StoreTarantool:
		conn, err := ttadapter.Connect(ctx, ttadapter.Config{
			Address:  cfg.TTAddress,
			User:     cfg.TTUser,
			Password: cfg.TTPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to tarantool: %w", err)
		}
		repo := ttadapter.NewStateRepository(conn)
		s.Repo = repo
		s.Checkers["tarantool"] = repo
		s.Close = func() { _ = conn.Close() }

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return s, nil
}
