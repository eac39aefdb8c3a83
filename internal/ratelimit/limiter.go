package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dharmasatrya/flightscan/internal/metrics"
)

// Config describes one token bucket. A RequestsPerSecond of zero or less
// disables limiting.
type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         5,
	}
}

func (c Config) bucket() *rate.Limiter {
	if c.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), max(1, c.BurstSize))
}

// ProviderLimiter throttles outbound calls per provider name. Providers
// without an explicit limit get a bucket built from the fallback Config on
// first use.
type ProviderLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	fallback Config
}

func NewProviderLimiter(fallback Config) *ProviderLimiter {
	return &ProviderLimiter{
		buckets:  make(map[string]*rate.Limiter),
		fallback: fallback,
	}
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[provider]
	if !ok {
		b = p.fallback.bucket()
		p.buckets[provider] = b
	}
	return b
}

// SetProviderLimit replaces the provider's bucket.
func (p *ProviderLimiter) SetProviderLimit(provider string, cfg Config) {
	p.mu.Lock()
	p.buckets[provider] = cfg.bucket()
	p.mu.Unlock()
}

// Wait blocks until provider may be called or ctx is done. A nil limiter never blocks.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if p == nil {
		return nil
	}

	start := time.Now()
	err := p.GetLimiter(provider).Wait(ctx)
	metrics.RateLimitWait.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	return err
}
