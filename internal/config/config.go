package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN API
	ESPNBaseURL     string        `envconfig:"ESPN_BASE_URL" default:"https://sports.core.api.espn.com/v2/sports/basketball/leagues/mens-college-basketball"`
	ESPNSiteBaseURL string        `envconfig:"ESPN_SITE_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"`
	ESPNTimeout     time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`
	ESPNRateLimit   int           `envconfig:"ESPN_RATE_LIMIT" default:"10"` // requests per second

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaab_v2"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaab_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional response cache for slowly-changing payloads)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sync defaults (overridable by cmd/update flags)
	SyncDays      int `envconfig:"SYNC_DAYS" default:"7"`
	SyncWorkers   int `envconfig:"SYNC_WORKERS" default:"20"`
	SyncBatchSize int `envconfig:"SYNC_BATCH_SIZE" default:"50"`
	BackfillLimit int `envconfig:"BACKFILL_LIMIT" default:"100"`
	AthleteLimit  int `envconfig:"ATHLETE_LIMIT" default:"100"`
	VenueLimit    int `envconfig:"VENUE_LIMIT" default:"50"`
	Season        int `envconfig:"SEASON" default:"2026"`

	// Scheduler
	EnableScheduler     bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlySyncCron     string `envconfig:"NIGHTLY_SYNC_CRON" default:"0 3 * * *"`
	IncrementalInterval int    `envconfig:"INCREMENTAL_INTERVAL" default:"3600"` // seconds
	InitialSyncEnabled  bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.SyncWorkers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be at least 1")
	}

	if c.ESPNRateLimit < 1 {
		return fmt.Errorf("ESPN_RATE_LIMIT must be at least 1")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
