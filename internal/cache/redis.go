package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaoforge/dev-engine/internal/observability/metrics"
)

// RedisCache is a Cache backend over a shared Redis instance, for
// deployments that run more than one agent process against the same
// document context. Values are JSON-encoded; TTL is delegated to Redis
// key expiration rather than reimplemented.
type RedisCache struct {
	client  *redis.Client
	name    string
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics

	hits, misses, evictions, expirations uint64
}

// NewRedisCache constructs a RedisCache over client, namespacing every
// key under prefix so multiple caches can share one Redis database.
func NewRedisCache(client *redis.Client, name, prefix string, defaultTTL time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, name: name, prefix: prefix, ttl: defaultTTL, metrics: m}
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) fullKey(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool, error) {
	raw, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddUint64(&c.misses, 1)
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(c.name)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, fmt.Errorf("cache: decode cached value: %w", err)
	}

	atomic.AddUint64(&c.hits, 1)
	if c.metrics != nil {
		c.metrics.RecordCacheHit(c.name)
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode value: %w", err)
	}

	if err := c.client.Set(ctx, c.fullKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	if c.metrics != nil {
		if size, err := c.client.DBSize(ctx).Result(); err == nil {
			c.metrics.SetCacheSize(c.name, int(size))
		}
	}
	return nil
}

func (c *RedisCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (interface{}, error) {
	if value, ok, err := c.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return value, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}
	return value, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis del: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, full...).Err()
}

func (c *RedisCache) HasKey(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis exists: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) Keys(ctx context.Context) ([]string, error) {
	pattern := c.prefix + ":*"
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(c.prefix)+1:])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache: redis scan: %w", err)
	}
	return keys, nil
}

// Statistics reports in-process hit/miss counters. Redis' own eviction
// policy is not reflected here; this tracks only what this process has
// observed through Get/Set.
func (c *RedisCache) Statistics() Statistics {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Statistics{
		Hits:        hits,
		Misses:      misses,
		Evictions:   atomic.LoadUint64(&c.evictions),
		Expirations: atomic.LoadUint64(&c.expirations),
		HitRate:     hitRate,
	}
}
