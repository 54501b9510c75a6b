package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKey_WithAndWithoutStory(t *testing.T) {
	storyNum := 4
	require.Equal(t, "search:2.4:prd", Key("search", 2, &storyNum, "prd"))
	require.Equal(t, "search:2:architecture", Key("search", 2, nil, "architecture"))
}

func TestLRUCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	ok, err := c.HasKey(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "prd", "contents", 0))
	value, found, err := c.Get(ctx, "prd")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "contents", value)
}

func TestLRUCache_ExpiresEntries(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	stats := c.Statistics()
	require.Equal(t, uint64(1), stats.Expirations)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 2, nil)

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	_, _, _ = c.Get(ctx, "a") // touch a so it's most recently used

	require.NoError(t, c.Set(ctx, "c", 3, 0))

	_, found, _ := c.Get(ctx, "b")
	require.False(t, found, "b should have been evicted as least recently used")

	_, found, _ = c.Get(ctx, "a")
	require.True(t, found)

	stats := c.Statistics()
	require.Equal(t, uint64(1), stats.Evictions)
}

func TestLRUCache_GetOrLoad_CallsLoaderOnceOnMiss(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return "loaded", nil
	}

	value, err := c.GetOrLoad(ctx, "k", 0, loader)
	require.NoError(t, err)
	require.Equal(t, "loaded", value)

	value, err = c.GetOrLoad(ctx, "k", 0, loader)
	require.NoError(t, err)
	require.Equal(t, "loaded", value)
	require.Equal(t, 1, calls)
}

func TestLRUCache_GetOrLoad_PropagatesLoaderError(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	wantErr := errors.New("load failed")
	_, err := c.GetOrLoad(ctx, "k", 0, func() (interface{}, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)

	ok, err := c.HasKey(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLRUCache_InvalidateAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))

	removed, err := c.Invalidate(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = c.Invalidate(ctx, "a")
	require.NoError(t, err)
	require.False(t, removed)

	require.NoError(t, c.Clear(ctx))
	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestLRUCache_Keys_FiltersExpired(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	require.NoError(t, c.Set(ctx, "fresh", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "stale", 2, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, keys)
}

func TestLRUCache_Statistics_HitRate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache("test", time.Minute, 10, nil)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	_, _, _ = c.Get(ctx, "k")
	_, _, _ = c.Get(ctx, "missing")

	stats := c.Statistics()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.InDelta(t, 0.5, stats.HitRate, 0.001)
}
