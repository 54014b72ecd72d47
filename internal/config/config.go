// Package config loads the deployment configuration for aurorabmi:
// Postgres/Redis connection info, vendor endpoints, rate limits and
// persisted-state paths. Frozen scoring constants (weights, rolling
// window, band thresholds) are never part of this config — they are Go
// constants in internal/bmi and are not configurable at runtime.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root deployment configuration, loaded from a YAML file.
// Each vendor's API key is read from the environment variable named by
// its api_key_env (keys are never checked into the config file); no
// other field is taken from the environment.
type Config struct {
	Postgres PostgresConfig          `yaml:"postgres"`
	Redis    RedisConfig             `yaml:"redis"`
	Vendors  map[string]VendorConfig `yaml:"vendors"`
	Universe UniverseSourceConfig    `yaml:"universe"`
	Storage  StorageConfig           `yaml:"storage"`
}

// PostgresConfig holds the cumulative-history store's DSN parts.
type PostgresConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_secs"`
}

// RedisConfig describes both the TTL response cache (v8 client) and the
// live pub/sub broadcast (v9 client), which intentionally use different
// addresses so the cache and the live feed can be scaled independently.
type RedisConfig struct {
	CacheAddr  string `yaml:"cache_addr"`
	PubSubAddr string `yaml:"pubsub_addr"`
	Channel    string `yaml:"channel"`
}

// VendorConfig is one upstream market-data vendor's operating envelope:
// rate limit, circuit breaker thresholds, and credentials. APIKey is
// always sourced from the environment (never hard-coded in YAML).
type VendorConfig struct {
	BaseURL          string `yaml:"base_url"`
	RPS              int    `yaml:"rps"`
	Burst            int    `yaml:"burst"`
	TTLSecs          int    `yaml:"ttl_secs"`
	FailureThreshold int    `yaml:"failure_threshold"`
	TimeoutMS        int    `yaml:"timeout_ms"`
	Enabled          bool   `yaml:"enabled"`
	APIKeyEnv        string `yaml:"api_key_env"`

	apiKey string
}

// APIKey returns the vendor's credential, read lazily from the
// environment variable named by APIKeyEnv.
func (v *VendorConfig) APIKey() string {
	if v.apiKey == "" {
		v.apiKey = os.Getenv(v.APIKeyEnv)
	}
	return v.apiKey
}

// UniverseSourceConfig points at the static seed universe file loaded
// by internal/universe.
type UniverseSourceConfig struct {
	SeedFile string `yaml:"seed_file"`
}

// StorageConfig holds filesystem paths for the local per-day snapshot
// store and log files.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	LogFile    string `yaml:"log_file"`
}

// Load reads the YAML config at path, first loading a .env file from the
// current working directory (if present) so vendor API key environment
// variables are populated
// before VendorConfig.APIKey is ever called.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Redis.CacheAddr == "" {
		return fmt.Errorf("redis.cache_addr is required")
	}
	if c.Redis.PubSubAddr == "" {
		return fmt.Errorf("redis.pubsub_addr is required")
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "aurora:bmi:live"
	}
	for name, v := range c.Vendors {
		if v.Enabled && v.BaseURL == "" {
			return fmt.Errorf("vendor %s: base_url is required when enabled", name)
		}
		if v.RPS <= 0 {
			return fmt.Errorf("vendor %s: rps must be positive", name)
		}
		if v.Burst < v.RPS {
			return fmt.Errorf("vendor %s: burst (%d) must be >= rps (%d)", name, v.Burst, v.RPS)
		}
	}
	return nil
}
