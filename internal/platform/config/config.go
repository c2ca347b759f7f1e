package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Optional backends (Postgres,
// Redis, Kafka) fall back to in-memory implementations when unset so the
// service stays runnable in development.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	LogLevel      string
}

// RedisConfig tunes the notification feed client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("DONEBY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("DONEBY_KAFKA_TOPIC")
	if topic == "" {
		topic = "verification.activities"
	}

	var brokers []string
	if raw := os.Getenv("DONEBY_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("DONEBY_POSTGRES_DSN"),
		RedisURL:      os.Getenv("DONEBY_REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		JWTSigningKey: jwtSigningKey,
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
}

// Redis derives the feed client configuration with pool defaults.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
