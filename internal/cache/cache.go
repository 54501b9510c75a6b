// Package cache provides a thread-safe document cache for frequently
// accessed context (PRDs, architecture docs, story/epic definitions),
// with TTL expiration and pluggable backends.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Loader produces the value for a key on a cache miss.
type Loader func() (interface{}, error)

// Statistics is a point-in-time snapshot of cache counters.
type Statistics struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Size        int
	MaxSize     int
	HitRate     float64
}

// Cache is the interface both backends (in-memory LRU, Redis) satisfy.
// Every method takes a context so the Redis backend can honor
// cancellation/timeouts; the in-memory backend ignores it.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (interface{}, error)
	Invalidate(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	HasKey(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	Statistics() Statistics
}

// Key builds the cache key for one piece of document context, in the
// "<feature>:<epic>[.<story>]:<docType>" shape used across the cache and
// the agent-context facade so both land on the same key for the same
// document.
func Key(feature string, epicNum int, storyNum *int, docType string) string {
	scope := strconv.Itoa(epicNum)
	if storyNum != nil {
		scope = scope + "." + strconv.Itoa(*storyNum)
	}
	return feature + ":" + scope + ":" + docType
}
