package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightscan/internal/cache"
	"github.com/dharmasatrya/flightscan/internal/config"
	"github.com/dharmasatrya/flightscan/internal/handler"
	"github.com/dharmasatrya/flightscan/internal/jobs"
	"github.com/dharmasatrya/flightscan/internal/logger"
	"github.com/dharmasatrya/flightscan/internal/providers"
	"github.com/dharmasatrya/flightscan/internal/ratelimit"
	"github.com/dharmasatrya/flightscan/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = cache.Connect(ctx, cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zlog.Info("Connected to Redis", zap.String("host", cfg.Redis.Host), zap.String("port", cfg.Redis.Port))
	}

	provider, err := initializeProvider(cfg)
	if err != nil {
		zlog.Fatal("Failed to initialize provider", zap.Error(err))
	}
	if !provider.Configured() {
		zlog.Warn("Provider is not configured, searches will return an error result", zap.String("provider", provider.Name()))
	}

	rateLimiter := ratelimit.NewProviderLimiter(ratelimit.DefaultConfig())
	rateLimiter.SetProviderLimit(provider.Name(), ratelimit.Config{
		RequestsPerSecond: cfg.Provider.RPS,
		BurstSize:         cfg.Provider.Burst,
	})

	var offerCache cache.Cache = cache.NewNoOpCache()
	if cfg.Cache.Enabled {
		offerCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL)
		zlog.Info("Offer cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	orchestrator := search.NewOrchestrator(provider, search.Config{
		Tuning: search.Tuning{
			Defaults: limits(cfg.Search.Defaults),
			Floors:   limits(cfg.Search.Floors),
			HardCaps: limits(cfg.Search.HardCaps),
		},
		TimeBudget:      cfg.Search.TimeBudget,
		PairConcurrency: cfg.Search.PairConcurrency,
		MaxRetries:      cfg.Provider.MaxRetries,
		RetryDelays:     []time.Duration{cfg.Provider.RetryDelay},
		RateLimiter:     rateLimiter,
		Cache:           offerCache,
	}, zlog.Named("search"))

	var store jobs.Store
	if cfg.Jobs.Store == "redis" {
		store = jobs.NewRedisStore(redisClient, cfg.Jobs.Retention)
	} else {
		store = jobs.NewMemoryStore(cfg.Jobs.Retention)
	}
	defer store.Close()

	registry, err := jobs.NewRegistry(store, orchestrator, jobs.Config{Workers: cfg.Jobs.Workers}, zlog.Named("jobs"))
	if err != nil {
		zlog.Fatal("Failed to create job registry", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(handler.RequestLogger(zlog.Named("http")))

	handler.Register(e,
		handler.NewSearchHandler(orchestrator, registry, zlog.Named("handler")),
		handler.NewProviderHandler(provider, zlog.Named("handler")),
	)

	go func() {
		zlog.Info("Starting flightscan server",
			zap.String("port", cfg.Server.Port),
			zap.String("provider", provider.Name()),
			zap.String("job_store", cfg.Jobs.Store),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down", zap.Int("running_jobs", registry.Running()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := registry.Close(cfg.Server.ShutdownTimeout); err != nil {
		zlog.Warn("Search jobs still running at shutdown", zap.Error(err))
	}
}

func initializeProvider(cfg *config.Config) (providers.OfferProvider, error) {
	switch cfg.Provider.Kind {
	case "fixture":
		return providers.NewFixtureProvider(cfg.Provider.FixtureLatency)
	default:
		duffelCfg := providers.DefaultDuffelConfig()
		duffelCfg.AccessToken = cfg.Duffel.AccessToken
		if cfg.Duffel.BaseURL != "" {
			duffelCfg.BaseURL = cfg.Duffel.BaseURL
		}
		if cfg.Duffel.Version != "" {
			duffelCfg.Version = cfg.Duffel.Version
		}
		if cfg.Duffel.Timeout > 0 {
			duffelCfg.Timeout = cfg.Duffel.Timeout
		}
		return providers.NewDuffelProvider(duffelCfg), nil
	}
}

func limits(l config.LimitsConfig) search.Limits {
	return search.Limits{PerPair: l.PerPair, Total: l.Total, Pairs: l.Pairs}
}
