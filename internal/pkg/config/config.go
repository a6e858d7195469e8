package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Source selection values.
const (
	PostSourceElasticsearch = "elasticsearch"
	PostSourceAttached      = "attached"

	DemographicSourcePostgres = "postgres"
	DemographicSourceSQLite   = "sqlite"
	DemographicSourceAttached = "attached"
)

// Config holds all application configuration. It is constructed once at
// startup and passed by value; nothing reads ambient global state.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:":9091"`

	// MinDisplayedCount is the privacy threshold: no reported count below it
	// ever leaves the service.
	MinDisplayedCount int `env:"MIN_DISPLAYED_COUNT" envDefault:"10"`
	// MaxCrossSections caps how many demographic dimensions one query may
	// cross-tabulate.
	MaxCrossSections int `env:"MAX_CROSS_SECTIONS" envDefault:"2"`
	// FillZeros adds explicit zero entries for absent categories so the
	// response schema is complete regardless of sparse data.
	FillZeros bool `env:"FILL_ZEROS" envDefault:"false"`

	PostSource        string `env:"POST_SOURCE" envDefault:"elasticsearch"`
	DemographicSource string `env:"DEMOGRAPHIC_SOURCE" envDefault:"postgres"`

	ESAddrs string `env:"ES_ADDRS" envDefault:"http://localhost:9200"`
	ESIndex string `env:"ES_INDEX" envDefault:"tweets"`

	PostgresURL string `env:"POSTGRES_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"panel.db"`

	// RedisAddr enables the demographic read-through cache when set.
	RedisAddr           string        `env:"REDIS_ADDR"`
	DemographicCacheTTL time.Duration `env:"DEMOGRAPHIC_CACHE_TTL" envDefault:"10m"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.PostSource {
	case PostSourceElasticsearch, PostSourceAttached:
	default:
		return fmt.Errorf("unknown POST_SOURCE %q", c.PostSource)
	}
	switch c.DemographicSource {
	case DemographicSourcePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when DEMOGRAPHIC_SOURCE=postgres")
		}
	case DemographicSourceSQLite, DemographicSourceAttached:
	default:
		return fmt.Errorf("unknown DEMOGRAPHIC_SOURCE %q", c.DemographicSource)
	}
	if c.MinDisplayedCount < 1 {
		return fmt.Errorf("MIN_DISPLAYED_COUNT must be positive, got %d", c.MinDisplayedCount)
	}
	if c.MaxCrossSections < 0 {
		return fmt.Errorf("MAX_CROSS_SECTIONS must not be negative, got %d", c.MaxCrossSections)
	}
	return nil
}
