package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml from the given directories (or "." and "./configs"),
// then lets environment variables override any key: duffel.access_token is
// DUFFEL_ACCESS_TOKEN, search.time_budget is SEARCH_TIME_BUDGET and so on.
// A .env file in the working directory is loaded first when present.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider.Kind = strings.ToLower(strings.TrimSpace(cfg.Provider.Kind))
	cfg.Jobs.Store = strings.ToLower(strings.TrimSpace(cfg.Jobs.Store))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.body_limit", "64K")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file.filename", "logs/flightscan.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 14)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("duffel.access_token", "")
	v.SetDefault("duffel.base_url", "https://api.duffel.com")
	v.SetDefault("duffel.version", "v2")
	v.SetDefault("duffel.timeout", 30*time.Second)

	v.SetDefault("provider.kind", "duffel")
	v.SetDefault("provider.rps", 5.0)
	v.SetDefault("provider.burst", 5)
	v.SetDefault("provider.max_retries", 1)
	v.SetDefault("provider.retry_delay", 500*time.Millisecond)
	v.SetDefault("provider.fixture_latency", 0)

	v.SetDefault("search.time_budget", 60*time.Second)
	v.SetDefault("search.pair_concurrency", 1)
	v.SetDefault("search.defaults.per_pair", 50)
	v.SetDefault("search.defaults.total", 5000)
	v.SetDefault("search.defaults.pairs", 20)
	v.SetDefault("search.floors.per_pair", 10)
	v.SetDefault("search.floors.total", 100)
	v.SetDefault("search.floors.pairs", 1)
	v.SetDefault("search.hard_caps.per_pair", 300)
	v.SetDefault("search.hard_caps.total", 15000)
	v.SetDefault("search.hard_caps.pairs", 60)

	v.SetDefault("jobs.workers", 8)
	v.SetDefault("jobs.store", "memory")
	v.SetDefault("jobs.retention", time.Hour)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
