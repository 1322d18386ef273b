package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs. Each is optional: without Postgres or Redis the ranking store
	// is kept in memory, without ClickHouse no rating history is archived.
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Match data provider
	ProviderBaseURL   string
	ProviderAuthKey   string
	ProviderRateLimit float64
	ProviderBurst     int

	// Remote scoring model; empty selects the local linear model
	ScoringModelURL string

	// Global rankings
	ShardsPerSeason       int
	ShardTTL              time.Duration
	PriorityRefreshBudget int
	RefreshConcurrency    int

	// Event summaries older than this are recomputed. Zero keeps them forever.
	EventSummaryTTL time.Duration

	DraftTimeout time.Duration

	// Snapshot worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Optional YAML file with model constants
	TuningFile string
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		PostgresURL:   os.Getenv("POSTGRES_URL"),
		ClickHouseURL: os.Getenv("CLICKHOUSE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),

		ProviderBaseURL:   getEnv("PROVIDER_BASE_URL", "https://www.thebluealliance.com/api/v3"),
		ProviderRateLimit: getEnvFloat("PROVIDER_RATE_LIMIT", 10),
		ProviderBurst:     getEnvInt("PROVIDER_BURST", 20),

		ScoringModelURL: os.Getenv("SCORING_MODEL_URL"),

		ShardsPerSeason:       getEnvInt("SHARDS_PER_SEASON", 22),
		ShardTTL:              getEnvDuration("SHARD_TTL", 6*time.Hour),
		PriorityRefreshBudget: getEnvInt("PRIORITY_REFRESH_BUDGET", 1),
		RefreshConcurrency:    getEnvInt("REFRESH_CONCURRENCY", 4),

		EventSummaryTTL: getEnvDuration("EVENT_SUMMARY_TTL", 15*time.Minute),
		DraftTimeout:    getEnvDuration("DRAFT_TIMEOUT", 30*time.Second),

		WorkerCount:   getEnvInt("SNAPSHOT_WORKERS", 2),
		QueueSize:     getEnvInt("SNAPSHOT_QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("SNAPSHOT_BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("SNAPSHOT_FLUSH_INTERVAL", 2*time.Second),

		TuningFile: os.Getenv("TUNING_FILE"),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.ProviderAuthKey, err = getEnvRequired("PROVIDER_AUTH_KEY"); err != nil {
		return nil, err
	}
	if cfg.ShardsPerSeason <= 0 || cfg.ShardsPerSeason > 50 {
		return nil, fmt.Errorf("SHARDS_PER_SEASON must be between 1 and 50, got %d", cfg.ShardsPerSeason)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
