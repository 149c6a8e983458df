package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ski-search/internal/observability"
)

// PageCache stores fetched page bodies keyed by URL
type PageCache interface {
	Get(ctx context.Context, pageURL string) ([]byte, bool, error)
	Set(ctx context.Context, pageURL string, body []byte, ttl time.Duration) error
}

const pageKeyPrefix = "skisearch:page:"

// RedisPageCache is a PageCache backed by Redis
type RedisPageCache struct {
	c *redis.Client
}

// NewRedisPageCache connects to Redis at addr
func NewRedisPageCache(addr, pass string, db int) *RedisPageCache {
	return &RedisPageCache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// Ping checks the connection
func (r *RedisPageCache) Ping(ctx context.Context) error {
	if err := r.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (r *RedisPageCache) Close() error {
	return r.c.Close()
}

func (r *RedisPageCache) Get(ctx context.Context, pageURL string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, pageKeyPrefix+pageURL).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

func (r *RedisPageCache) Set(ctx context.Context, pageURL string, body []byte, ttl time.Duration) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, pageKeyPrefix+pageURL, body, ttl).Err()
}
