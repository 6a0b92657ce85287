package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"teams-pollbot/config"
	"teams-pollbot/internal/bootstrap"
	"teams-pollbot/internal/redis"
	"teams-pollbot/internal/services"
	"teams-pollbot/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

const usage = `
Teams Poll Bot - Storage CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create the poll_state table (postgres store)
  down        Drop the poll_state table and the stored polls (DANGEROUS)
  status      Show database connection and table status
  show        Print the stored poll document from the configured store
  sign        Print the Authorization header Teams would send for a body

Flags:
  -body string   Body to sign; read from stdin when empty

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  STORE_DRIVER=redis go run cmd/migrate/main.go show
  go run cmd/migrate/main.go -body '{"text":"poll"}' sign
`

func main() {
	body := flag.String("body", "", "Body to sign; read from stdin when empty")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	cfg := config.LoadConfig()
	ctx := context.Background()

	switch command {
	case "up":
		runMigrationsUp(ctx, cfg)
	case "down":
		runMigrationsDown(ctx, cfg)
	case "status":
		showStatus(ctx, cfg)
	case "show":
		showState(ctx, cfg)
	case "sign":
		runSign(cfg, *body)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func connect(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	pool, err := database.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	return pool
}

func runMigrationsUp(ctx context.Context, cfg *config.Config) {
	pool := connect(ctx, cfg)
	defer pool.Close()
	log.Println("🚀 Running migrations UP...")

	if err := database.MigrateUp(ctx, pool); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func runMigrationsDown(ctx context.Context, cfg *config.Config) {
	pool := connect(ctx, cfg)
	defer pool.Close()
	log.Println("⬇️  Rolling back migrations...")

	if err := database.MigrateDown(ctx, pool); err != nil {
		log.Fatalf("❌ Rollback failed: %v", err)
	}

	log.Println("✅ Rollback completed successfully!")
}

func showStatus(ctx context.Context, cfg *config.Config) {
	pool := connect(ctx, cfg)
	defer pool.Close()
	log.Println("🔍 Checking database status...")

	if err := database.HealthCheck(ctx, pool); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	exists, err := database.TableExists(ctx, pool, database.StateTable)
	if err != nil {
		log.Fatalf("⚠️  Error checking table %s: %v", database.StateTable, err)
	}
	if !exists {
		log.Printf("❌ Table %-12s does not exist (run `migrate up`)", database.StateTable)
		return
	}

	updatedAt, err := database.StateUpdatedAt(ctx, pool)
	switch {
	case err != nil:
		log.Printf("⚠️  Error reading %s: %v", database.StateTable, err)
	case updatedAt == nil:
		log.Printf("✅ Table %-12s exists (no polls saved yet)", database.StateTable)
	default:
		log.Printf("✅ Table %-12s exists (last saved %s)", database.StateTable, updatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
}

func showState(ctx context.Context, cfg *config.Config) {
	var redisClient *goredis.Client
	if cfg.StoreDriver == config.StoreRedis {
		redisClient = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	store, err := bootstrap.OpenStore(ctx, cfg, redisClient)
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()

	state, err := store.Repo.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load poll state: %v", err)
	}
	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatalf("❌ Failed to encode poll state: %v", err)
	}
	fmt.Println(string(out))
}

func runSign(cfg *config.Config, body string) {
	if cfg.AuthToken == "" {
		log.Fatal("❌ MS_AUTH_TOKEN is not set")
	}
	data := []byte(body)
	if body == "" {
		var err error
		if data, err = io.ReadAll(os.Stdin); err != nil {
			log.Fatalf("❌ Failed to read body: %v", err)
		}
	}
	fmt.Println(services.NewAuthService(cfg.AuthToken).Sign(data))
}
