package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Audit      AuditConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DatabaseConfig configures the Postgres backend, used when
// STORE_BACKEND=postgres.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	StreamName string
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	MaxConns int
}

type AuthConfig struct {
	JWTSecret string
	// Token lifetimes for a plain signin vs. one with the remember flag.
	SessionTTL  time.Duration
	RememberTTL time.Duration
	// Cookie lifetimes; the short one is deliberately not reconciled with
	// SessionTTL (the cookie dies at 30m while the token stays valid to 50m).
	CookieMaxAge         time.Duration
	CookieRememberMaxAge time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AuditConfig struct {
	ConsumerGroup string
	ConsumerName  string
	BatchSize     int
	PollInterval  time.Duration
	BlockTime     time.Duration
}

func Load() (*Config, error) {
	// Load .env if it exists (local dev), ignore if not (the deploy
	// environment injects real env vars).
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Mode:           getEnv("NODE_ENV", ModeDevelopment),
			AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGODB_DATABASE", "authorization"),
			Collection: getEnv("MONGODB_COLLECTION", "users"),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_DSN", ""),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			StreamName: getEnv("REDIS_STREAM_NAME", "auth:events"),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "auth"),
			Username: getEnv("CLICKHOUSE_USERNAME", "clickhouse"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			MaxConns: getEnvAsInt("CLICKHOUSE_MAX_CONNS", 10),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 50*time.Minute),
			RememberTTL:          getEnvAsDuration("REMEMBER_TTL", 7*24*time.Hour),
			CookieMaxAge:         getEnvAsDuration("COOKIE_MAX_AGE", 30*time.Minute),
			CookieRememberMaxAge: getEnvAsDuration("COOKIE_REMEMBER_MAX_AGE", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Audit: AuditConfig{
			ConsumerGroup: getEnv("AUDIT_CONSUMER_GROUP", "audit-group"),
			ConsumerName:  getEnv("AUDIT_CONSUMER_NAME", "worker-1"),
			BatchSize:     getEnvAsInt("AUDIT_BATCH_SIZE", 100),
			PollInterval:  getEnvAsDuration("AUDIT_POLL_INTERVAL", time.Second),
			BlockTime:     getEnvAsDuration("AUDIT_BLOCK_TIME", 5*time.Second),
		},
	}

	return cfg, nil
}

// IsProduction reports whether cookie security attributes should be tightened.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == ModeProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
