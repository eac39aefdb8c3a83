package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dharmasatrya/flightscan/internal/logger"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      logger.Config  `mapstructure:"log"`
	Duffel   DuffelConfig   `mapstructure:"duffel"`
	Provider ProviderConfig `mapstructure:"provider"`
	Search   SearchConfig   `mapstructure:"search"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DuffelConfig struct {
	AccessToken string        `mapstructure:"access_token"`
	BaseURL     string        `mapstructure:"base_url"`
	Version     string        `mapstructure:"version"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ProviderConfig struct {
	Kind           string        `mapstructure:"kind"` // duffel, fixture
	RPS            float64       `mapstructure:"rps"`
	Burst          int           `mapstructure:"burst"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	FixtureLatency time.Duration `mapstructure:"fixture_latency"`
}

type LimitsConfig struct {
	PerPair int `mapstructure:"per_pair"`
	Total   int `mapstructure:"total"`
	Pairs   int `mapstructure:"pairs"`
}

type SearchConfig struct {
	TimeBudget      time.Duration `mapstructure:"time_budget"`
	PairConcurrency int           `mapstructure:"pair_concurrency"`
	Defaults        LimitsConfig  `mapstructure:"defaults"`
	Floors          LimitsConfig  `mapstructure:"floors"`
	HardCaps        LimitsConfig  `mapstructure:"hard_caps"`
}

type JobsConfig struct {
	Workers   int           `mapstructure:"workers"`
	Store     string        `mapstructure:"store"` // memory, redis
	Retention time.Duration `mapstructure:"retention"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.Cache.Enabled || c.Jobs.Store == "redis"
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch c.Provider.Kind {
	case "duffel", "fixture":
	default:
		return fmt.Errorf("provider.kind must be 'duffel' or 'fixture', got %q", c.Provider.Kind)
	}
	if c.Provider.MaxRetries < 0 {
		return errors.New("provider.max_retries must not be negative")
	}
	switch c.Jobs.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("jobs.store must be 'memory' or 'redis', got %q", c.Jobs.Store)
	}
	if c.Jobs.Workers < 1 {
		return errors.New("jobs.workers must be at least 1")
	}
	if c.Search.PairConcurrency < 1 {
		return errors.New("search.pair_concurrency must be at least 1")
	}
	for _, l := range []struct {
		name                string
		floor, def, hardCap int
	}{
		{"per_pair", c.Search.Floors.PerPair, c.Search.Defaults.PerPair, c.Search.HardCaps.PerPair},
		{"total", c.Search.Floors.Total, c.Search.Defaults.Total, c.Search.HardCaps.Total},
		{"pairs", c.Search.Floors.Pairs, c.Search.Defaults.Pairs, c.Search.HardCaps.Pairs},
	} {
		if l.floor < 1 || l.floor > l.hardCap || l.def < l.floor || l.def > l.hardCap {
			return fmt.Errorf("search.%s limits must satisfy 1 <= floor <= default <= hard cap", l.name)
		}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive when the cache is enabled")
	}
	return nil
}
