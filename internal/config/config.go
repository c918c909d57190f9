package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string   `yaml:"database_url"`
	RedisURL         string   `yaml:"redis_url"`
	RabbitMQURL      string   `yaml:"rabbitmq_url"`
	RabbitMQPrefetch int      `yaml:"rabbitmq_prefetch"`
	PollSchedule     string   `yaml:"poll_schedule"` // cron expression for the due-reminder poll
	ClaimLimit       int      `yaml:"claim_limit"`   // max reminders claimed per poll
	AnnounceAgents   []string `yaml:"announce_agents"`
	SnapshotTTLSecs  int      `yaml:"snapshot_ttl_seconds"`
	WorkerDebugMode  bool     `yaml:"worker_debug_mode"`
	OTELEnabled      bool     `yaml:"otel_enabled"`
	OTELEndpoint     string   `yaml:"otel_endpoint"`
}

// Load loads configuration from an optional YAML file (MEMOGRAPH_CONFIG)
// overridden by environment variables
func Load() (*Config, error) {
	cfg := &Config{
		RabbitMQPrefetch: 1,
		PollSchedule:     "* * * * *",
		ClaimLimit:       50,
		AnnounceAgents:   []string{"assistant"},
		SnapshotTTLSecs:  3600,
	}

	if path := os.Getenv("MEMOGRAPH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.PollSchedule = getEnv("POLL_SCHEDULE", cfg.PollSchedule)
	cfg.ClaimLimit = getEnvInt("CLAIM_LIMIT", cfg.ClaimLimit)
	cfg.AnnounceAgents = getEnvList("ANNOUNCE_AGENTS", cfg.AnnounceAgents)
	cfg.SnapshotTTLSecs = getEnvInt("SNAPSHOT_TTL_SECONDS", cfg.SnapshotTTLSecs)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
