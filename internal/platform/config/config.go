package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Zero values mean "not configured" and the corresponding
// subsystem falls back to its in-memory implementation.
type Config struct {
	Addr string

	// DatabaseURL enables the PostgreSQL-backed ledger stores when set.
	DatabaseURL string

	Redis RedisConfig
	Kafka KafkaConfig

	JWTSigningKey string

	// AdminTokenHash is the bcrypt hash of the admin API token. Admin-only
	// routes (verification review, listing deletion) are gated on it.
	AdminTokenHash string

	// ListingCacheTTL bounds staleness of the available-listings browse cache.
	ListingCacheTTL time.Duration
}

// RedisConfig configures the optional Redis cache layer.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("RENTLY_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("RENTLY_DATABASE_URL"),
		JWTSigningKey:   getEnv("RENTLY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminTokenHash:  os.Getenv("RENTLY_ADMIN_TOKEN_HASH"),
		ListingCacheTTL: getDuration("RENTLY_LISTING_CACHE_TTL", 30*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("RENTLY_REDIS_URL"),
			PoolSize:     getInt("RENTLY_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("RENTLY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("RENTLY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("RENTLY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("RENTLY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: getEnv("RENTLY_AUDIT_TOPIC", "rently.audit"),
		},
	}
	if brokers := os.Getenv("RENTLY_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
