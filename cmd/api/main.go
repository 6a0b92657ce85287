package main

import (
	"context"
	"os"

	"teams-pollbot/config"
	"teams-pollbot/internal/bootstrap"
	"teams-pollbot/internal/events"
	"teams-pollbot/internal/handler"
	"teams-pollbot/internal/middleware"
	"teams-pollbot/internal/redis"
	"teams-pollbot/internal/repository"
	"teams-pollbot/internal/server"
	"teams-pollbot/internal/services"
	"teams-pollbot/internal/websocket"
	"teams-pollbot/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(log)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redis.Ping(ctx, redisClient); err != nil {
			log.Errorf("Failed to connect to redis: %v", err)
			os.Exit(1)
		}
		log.Infof("Connected to redis at %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	store, err := bootstrap.OpenStore(ctx, cfg, redisClient)
	if err != nil {
		log.Errorf("Failed to open %s store: %v", cfg.StoreDriver, err)
		os.Exit(1)
	}
	defer store.Close()
	log.Infof("Using %s store", cfg.StoreDriver)

	checkers := store.Checkers
	if redisClient != nil {
		checkers["redis"] = repository.HealthCheckFunc(func(ctx context.Context) error {
			return redis.Ping(ctx, redisClient)
		})
	}

	auth := services.NewAuthService(cfg.AuthToken)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var publisher events.Publisher = hub
	if cfg.EventsDriver == config.EventsRedis {
		publisher = redis.NewPublisher(redisClient)
		bridge := websocket.NewRedisBridge(redis.NewSubscriber(redisClient), hub)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Errorf("Redis event bridge stopped: %v", err)
			}
		}()
	}

	dispatcher := services.NewDispatcher(
		auth,
		repository.WithTimeout(store.Repo, cfg.StoreTimeout),
		services.WithPublisher(publisher),
		services.WithLogger(log),
	)

	var limiter middleware.WebhookLimiter
	if cfg.RateLimitEnabled {
		rl := redis.DefaultRateLimitConfig()
		rl.WebhookLimit = cfg.RateLimitPerMinute
		limiter = redis.NewRateLimiter(redisClient, rl)
	}

	srv := server.New(cfg, log)
	srv.SetupRoutes(&server.Handlers{
		Webhook: handler.NewWebhookHandler(dispatcher),
		Poll:    handler.NewPollHandler(dispatcher),
		Health:  handler.NewHealthHandler(checkers),
		Feed:    websocket.NewHandler(auth, hub, log),
	}, auth, limiter)

	if err := srv.Start(); err != nil {
		log.Errorf("Server exited with error: %v", err)
		os.Exit(1)
	}
}
