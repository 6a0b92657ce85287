package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile      = "file"
	StorePostgres  = "postgres"
	StoreRedis     = "redis"
	StoreS3        = "s3"
	StoreTarantool = "tarantool"
	StoreMemory    = "memory"

	EventsLocal = "local"
	EventsRedis = "redis"
)

type Config struct {
	AppPort string
	AppMode string
	LogMode string

	// AuthToken is the shared secret generated by Teams for the outgoing
	// webhook. It is base64 and doubles as the HMAC key once decoded.
	AuthToken string

	StoreDriver  string
	StoreTimeout time.Duration
	DBFilePath   string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisStateKey string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3ObjectKey string

	TTAddress  string
	TTUser     string
	TTPassword string

	RateLimitEnabled   bool
	RateLimitPerMinute int

	EventsDriver string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", getEnv("PORT", "8080")),
		AppMode: getEnv("APP_MODE", "debug"),
		LogMode: getEnv("LOG_MODE", "development"),

		AuthToken: getEnv("MS_AUTH_TOKEN", ""),

		StoreDriver:  getEnv("STORE_DRIVER", StoreFile),
		StoreTimeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		DBFilePath:   getEnv("DB_FILE_PATH", "db.json"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "pollbot"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisStateKey: getEnv("REDIS_STATE_KEY", "pollbot:state"),

		S3Region:    getEnv("S3_REGION", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3ObjectKey: getEnv("S3_OBJECT_KEY", "pollbot/db.json"),

		TTAddress:  getEnv("TT_ADDRESS", "127.0.0.1:3301"),
		TTUser:     getEnv("TT_USER", ""),
		TTPassword: getEnv("TT_PASSWORD", ""),

		RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", false),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		EventsDriver: getEnv("EVENTS_DRIVER", EventsLocal),
	}
}

// Validate reports configuration the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AuthToken == "" {
		errs = append(errs, errors.New("MS_AUTH_TOKEN is not set"))
	}
	switch c.StoreDriver {
	case StoreFile, StorePostgres, StoreRedis, StoreS3, StoreTarantool, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver == StoreS3 && (c.S3Region == "" || c.S3Bucket == "") {
		errs = append(errs, errors.New("S3_REGION and S3_BUCKET are required for the s3 store"))
	}
	if c.StoreDriver == StoreTarantool && (c.TTUser == "" || c.TTPassword == "") {
		errs = append(errs, errors.New("TT_USER and TT_PASSWORD are required for the tarantool store"))
	}
	switch c.EventsDriver {
	case EventsLocal, EventsRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown EVENTS_DRIVER %q", c.EventsDriver))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.StoreDriver == StoreRedis || c.RateLimitEnabled || c.EventsDriver == EventsRedis
}

// PostgresDSN builds a connection string for pgx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
