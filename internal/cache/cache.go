package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightscan/internal/models"
)

const keyPrefix = "flightscan:offers:"

// Key identifies one provider call: a route, a date pair and the page size asked for.
type Key struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Passengers    int
	Cabin         string
	Limit         int
}

func KeyFor(req *models.SearchRequest, pair models.DatePair, limit int) Key {
	return Key{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: pair.DepartureDate(),
		ReturnDate:    pair.ReturnDate(),
		Passengers:    req.Passengers,
		Cabin:         req.Cabin,
		Limit:         limit,
	}
}

type Cache interface {
	Get(ctx context.Context, key Key) ([]models.RawOffer, bool)
	Set(ctx context.Context, key Key, offers []models.RawOffer) error
	Close() error
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Connect opens a client and pings it once.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache does not own client; Close is a no-op.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]models.RawOffer, bool) {
	data, err := c.client.Get(ctx, generateKey(key)).Bytes()
	if err != nil {
		return nil, false
	}

	var offers []models.RawOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false
	}

	return offers, true
}

func (c *RedisCache) Set(ctx context.Context, key Key, offers []models.RawOffer) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(key), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return nil
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key Key) ([]models.RawOffer, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, key Key, offers []models.RawOffer) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func generateKey(key Key) string {
	h := sha256.New()
	for _, part := range []string{
		key.Origin,
		key.Destination,
		key.DepartureDate,
		key.ReturnDate,
		strconv.Itoa(key.Passengers),
		key.Cabin,
		strconv.Itoa(key.Limit),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
