// Package config reads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Kafka    Kafka
	JWT      JWT
	Password Password
	Device   Device
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Database configures the PostgreSQL connection. An empty URL selects the
// in-memory store.
type Database struct {
	URL string
}

// Redis configures the login-id availability cache. An empty URL disables it.
type Redis struct {
	URL             string
	AvailabilityTTL time.Duration
}

// Kafka configures the audit event stream. No brokers disables it.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// JWT configures access token issuing.
type JWT struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// Password configures the bcrypt hasher.
type Password struct {
	BcryptCost int
}

// Device configures user-agent fingerprinting.
type Device struct {
	FingerprintEnabled bool
}

// FromEnv builds a Config from environment variables. Missing values fall
// back to development defaults; production deployments set everything.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("MEMBERD_ADDR", ":8080"),
			ShutdownTimeout: envDuration("MEMBERD_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			URL: os.Getenv("MEMBERD_DATABASE_URL"),
		},
		Redis: Redis{
			URL:             os.Getenv("MEMBERD_REDIS_URL"),
			AvailabilityTTL: envDuration("MEMBERD_REDIS_AVAILABILITY_TTL", time.Minute),
		},
		Kafka: Kafka{
			Brokers:    envList("MEMBERD_KAFKA_BROKERS"),
			AuditTopic: envString("MEMBERD_KAFKA_AUDIT_TOPIC", "memberd.audit.events"),
		},
		JWT: JWT{
			// Default is for development only and must be overridden in
			// production.
			SigningKey: envString("MEMBERD_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envString("MEMBERD_JWT_ISSUER", "memberd"),
			TTL:        envDuration("MEMBERD_JWT_TTL", 15*time.Minute),
		},
		Password: Password{
			BcryptCost: envInt("MEMBERD_BCRYPT_COST", 0),
		},
		Device: Device{
			FingerprintEnabled: os.Getenv("MEMBERD_DEVICE_FINGERPRINT") != "false",
		},
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
