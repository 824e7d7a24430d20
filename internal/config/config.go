// Package config loads and validates environment-driven configuration for
// the nestegg binaries. A .env file, when present, is loaded by each cmd
// before Load runs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Planner daemon
	Port    string
	DataDir string

	// Backend API
	APIPort      string
	SQLiteDBPath string
	JWTSecret    string
	TokenTTL     time.Duration

	// AMQP mirror
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	SyncUserID   int64

	// Worker health endpoint
	WorkerPort string

	// Shared
	AllowedOrigins []string
	LogLevel       string
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8081"),
		DataDir: getEnv("DATA_DIR", "./data"),

		APIPort:      getEnv("API_PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/nestegg.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 30*24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "nestegg"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "goal_mirror"),
		SyncUserID:   getEnvInt64("SYNC_USER_ID", 1),

		WorkerPort: getEnv("WORKER_PORT", "8083"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	for name, port := range map[string]string{
		"PORT": c.Port, "API_PORT": c.APIPort, "WORKER_PORT": c.WorkerPort,
	} {
		if p, err := strconv.Atoi(port); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': must be a number", name, port))
		} else if p < 1 || p > 65535 {
			errs = append(errs, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, p))
		}
	}

	if c.DataDir == "" {
		errs = append(errs, "DATA_DIR cannot be empty")
	}
	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
		if c.SyncUserID < 1 {
			errs = append(errs, fmt.Sprintf("invalid SYNC_USER_ID %d: must be at least 1", c.SyncUserID))
		}
	}

	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid TOKEN_TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateAPI adds the checks only the backend API needs.
func (c *Config) ValidateAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("configuration validation failed:\n- JWT_SECRET cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
