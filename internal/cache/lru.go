package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/gaoforge/dev-engine/internal/observability/metrics"
)

type lruEntry struct {
	key        string
	value      interface{}
	expiresAt  time.Time
	accessedAt time.Time
}

// LRUCache is a thread-safe in-process cache with per-entry TTL and
// LRU eviction once MaxSize is reached. It satisfies Cache.
type LRUCache struct {
	mu sync.Mutex

	name       string
	defaultTTL time.Duration
	maxSize    int

	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits, misses, evictions, expirations uint64

	metrics *metrics.Metrics
}

// NewLRUCache constructs an LRUCache named name (used as the Prometheus
// label when m is non-nil), with defaultTTL applied to entries that
// don't override it and maxSize entries retained before LRU eviction.
func NewLRUCache(name string, defaultTTL time.Duration, maxSize int, m *metrics.Metrics) *LRUCache {
	return &LRUCache{
		name:       name,
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		metrics:    m,
	}
}

var _ Cache = (*LRUCache)(nil)

func (c *LRUCache) Get(_ context.Context, key string) (interface{}, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.missLocked()
		return nil, false, nil
	}

	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.expirations++
		c.missLocked()
		return nil, false, nil
	}

	entry.accessedAt = time.Now()
	c.order.MoveToFront(elem)
	c.hitLocked()
	return entry.value, true, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(elem)
		return nil
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	entry := &lruEntry{key: key, value: value, expiresAt: time.Now().Add(ttl), accessedAt: time.Now()}
	elem := c.order.PushFront(entry)
	c.entries[key] = elem

	if c.metrics != nil {
		c.metrics.SetCacheSize(c.name, len(c.entries))
	}
	return nil
}

// GetOrLoad returns the cached value for key, or invokes loader on a
// miss and caches the result before returning it.
func (c *LRUCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (interface{}, error) {
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

func (c *LRUCache) Invalidate(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.removeLocked(elem)
	return true, nil
}

func (c *LRUCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order = list.New()
	if c.metrics != nil {
		c.metrics.SetCacheSize(c.name, 0)
	}
	return nil
}

func (c *LRUCache) HasKey(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.expirations++
		return false, nil
	}
	return true, nil
}

// Keys returns every non-expired key, evicting any that have expired
// along the way.
func (c *LRUCache) Keys(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*list.Element
	keys := make([]string, 0, len(c.entries))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*lruEntry)
		if now.After(entry.expiresAt) {
			expired = append(expired, elem)
			continue
		}
		keys = append(keys, entry.key)
	}
	for _, elem := range expired {
		c.removeLocked(elem)
		c.expirations++
	}
	return keys, nil
}

func (c *LRUCache) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Statistics{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		HitRate:     hitRate,
	}
}

func (c *LRUCache) hitLocked() {
	c.hits++
	if c.metrics != nil {
		c.metrics.RecordCacheHit(c.name)
	}
}

func (c *LRUCache) missLocked() {
	c.misses++
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(c.name)
	}
}

func (c *LRUCache) evictOldestLocked() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.removeLocked(elem)
	c.evictions++
	if c.metrics != nil {
		c.metrics.RecordCacheEviction(c.name)
	}
}

func (c *LRUCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
	if c.metrics != nil {
		c.metrics.SetCacheSize(c.name, len(c.entries))
		if time.Now().After(entry.expiresAt) {
			c.metrics.RecordCacheExpiration(c.name)
		}
	}
}
