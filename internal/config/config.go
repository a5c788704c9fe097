// internal/config/config.go
//
// Server configuration, read from the environment (and .env via godotenv in main).

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Content backends.
const (
	BackendFixture  = "fixture"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const devSecret = "dev-secret-change-me"

// Config holds every tunable of the server.
type Config struct {
	Port         string `envconfig:"PORT" default:"5175"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"` // json | console
	ClientOrigin string `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`

	// Content
	ContentBackend string `envconfig:"CONTENT_BACKEND" default:"fixture"`
	FixtureFile    string `envconfig:"CONTENT_FIXTURE_FILE"`
	SQLitePath     string `envconfig:"SQLITE_PATH" default:"./data/globe.db"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	OptionCount    int    `envconfig:"OPTION_COUNT" default:"4"`
	RandomSeed     uint64 `envconfig:"RANDOM_SEED" default:"0"` // 0 = unseeded

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET" default:"dev-secret-change-me"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieName    string        `envconfig:"COOKIE_NAME" default:"globe_session"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// Redis (empty address keeps sessions in memory only)
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Circuit breaker around SQL content stores
	BreakerMaxRequests      uint32        `envconfig:"BREAKER_MAX_REQUESTS" default:"3"`
	BreakerInterval         time.Duration `envconfig:"BREAKER_INTERVAL" default:"30s"`
	BreakerTimeout          time.Duration `envconfig:"BREAKER_TIMEOUT" default:"15s"`
	BreakerFailureThreshold float64       `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"0.6"`
	BreakerMinRequests      uint32        `envconfig:"BREAKER_MIN_REQUESTS" default:"5"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	c.ContentBackend = strings.ToLower(strings.TrimSpace(c.ContentBackend))
	switch c.ContentBackend {
	case BackendFixture, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown CONTENT_BACKEND %q", c.ContentBackend)
	}
	if c.OptionCount < 2 {
		return fmt.Errorf("config: OPTION_COUNT must be at least 2, got %d", c.OptionCount)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		return fmt.Errorf("config: BREAKER_FAILURE_THRESHOLD must be in (0, 1]")
	}
	return nil
}

// DevSecret reports whether the built-in development secret is in use.
func (c *Config) DevSecret() bool { return c.SessionSecret == devSecret }
