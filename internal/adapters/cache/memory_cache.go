package cache

import (
	"sync"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheRepository interface.
// Expiry is lazy: a stale entry is evicted by the Get that observes it, with a
// single periodic sweep reclaiming entries nobody asks for again
type MemoryCache struct {
	entries     map[string]*core.CacheEntry
	mu          sync.RWMutex
	hits        int64
	misses      int64
	sets        int64
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries:     make(map[string]*core.CacheEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	// Start background sweep
	go c.startCleanupTask()

	return c
}

// Get retrieves a result if it is younger than maxAge relative to the call
// time. Callers may probe with a smaller window than the entry's stored TTL;
// a stale entry is evicted and counted as a miss
func (c *MemoryCache) Get(key string, maxAge time.Duration) (*core.SourceResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if entry.Expired(c.now(), maxAge) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Result, true
}

// Set stores a result, overwriting any previous entry for the key and
// resetting its timer. Last writer wins
func (c *MemoryCache) Set(key string, result *core.SourceResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &core.CacheEntry{
		Key:      key,
		Result:   result,
		StoredAt: c.now(),
		TTL:      ttl,
	}
	c.sets++
}

// Has reports whether a result younger than maxAge exists for the key,
// without touching the hit/miss counters
func (c *MemoryCache) Has(key string, maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return ok && !entry.Expired(c.now(), maxAge)
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*core.CacheEntry)
}

// Keys returns the keys of all physically present entries
func (c *MemoryCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns hit/miss/set counters and current size
func (c *MemoryCache) Stats() core.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := core.CacheStats{
		Hits:   c.hits,
		Misses: c.misses,
		Sets:   c.sets,
		Size:   len(c.entries),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// cleanup removes entries whose own TTL has elapsed. An entry refreshed by a
// later Set carries a fresh StoredAt, so it survives the sweep
func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0
	for key, entry := range c.entries {
		if entry.Expired(now, entry.TTL) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("swept expired cache entries", zap.Int("expired_count", expiredCount))
	}
}

// startCleanupTask starts the background sweep
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background sweep
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
