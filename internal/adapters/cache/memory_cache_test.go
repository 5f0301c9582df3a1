package cache

import (
	"testing"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*MemoryCache, *time.Time) {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func result(text string) *core.SourceResult {
	return &core.SourceResult{Type: core.TypeInstantAnswer, Text: text, Confidence: 0.9, Source: "test"}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("weather_london", result("sunny"), 10*time.Minute)

	got, ok := c.Get("weather_london", 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "sunny", got.Text)
}

func TestMemoryCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get("absent", time.Minute)
	assert.False(t, ok)
}

func TestMemoryCacheExpiryIsLazy(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("time_utc", result("12:00"), 30*time.Second)
	*now = now.Add(31 * time.Second)

	_, ok := c.Get("time_utc", 30*time.Second)
	assert.False(t, ok)
	// The stale entry was evicted by the Get that observed it
	assert.Empty(t, c.Keys())
}

func TestMemoryCacheGetWithSmallerWindow(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("news_world", result("headlines"), time.Hour)
	*now = now.Add(10 * time.Minute)

	_, ok := c.Get("news_world", 5*time.Minute)
	assert.False(t, ok)
}

func TestMemoryCacheLastWriteWins(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("crypto_bitcoin", result("100"), time.Minute)
	*now = now.Add(50 * time.Second)
	c.Set("crypto_bitcoin", result("101"), time.Minute)
	*now = now.Add(30 * time.Second)

	got, ok := c.Get("crypto_bitcoin", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "101", got.Text)
}

func TestMemoryCacheSweepSparesRefreshedEntries(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("stale", result("old"), time.Minute)
	*now = now.Add(50 * time.Second)
	c.Set("fresh", result("new"), time.Minute)
	*now = now.Add(20 * time.Second)

	c.cleanup()

	assert.Equal(t, []string{"fresh"}, c.Keys())
}

func TestMemoryCacheHasDoesNotTouchCounters(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("key", result("v"), time.Minute)
	assert.True(t, c.Has("key", time.Minute))
	assert.False(t, c.Has("absent", time.Minute))

	stats := c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
}

func TestMemoryCacheStats(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("key", result("v"), time.Minute)
	c.Get("key", time.Minute)
	c.Get("key", time.Minute)
	c.Get("absent", time.Minute)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", result("1"), time.Minute)
	c.Set("b", result("2"), time.Minute)

	c.Delete("a")
	assert.False(t, c.Has("a", time.Minute))
	assert.True(t, c.Has("b", time.Minute))

	c.Clear()
	assert.Empty(t, c.Keys())
}
