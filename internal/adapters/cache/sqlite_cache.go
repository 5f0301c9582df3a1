package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the CacheRepository interface.
// Results survive process restarts; staleness is still judged per Get against
// the caller's maxAge window
type SQLiteCache struct {
	db          *sql.DB
	hits        int64
	misses      int64
	sets        int64
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS source_cache (
			cache_key TEXT PRIMARY KEY,
			result BLOB NOT NULL,
			stored_at TIMESTAMP NOT NULL,
			ttl_seconds INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a result if it is younger than maxAge relative to the call time
func (c *SQLiteCache) Get(key string, maxAge time.Duration) (*core.SourceResult, bool) {
	var payload []byte
	var storedAt string

	err := c.db.QueryRow(`
		SELECT result, stored_at FROM source_cache WHERE cache_key = ?
	`, key).Scan(&payload, &storedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("failed to query cache", zap.Error(err), zap.String("key", key))
		}
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	stored, err := time.Parse(time.RFC3339, storedAt)
	if err != nil {
		c.logger.Error("failed to parse stored_at timestamp", zap.Error(err))
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	if time.Since(stored) >= maxAge {
		c.Delete(key)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	var result core.SourceResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Error("failed to decode cached result", zap.Error(err), zap.String("key", key))
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return &result, true
}

// Set stores a result, overwriting any previous entry for the key
func (c *SQLiteCache) Set(key string, result *core.SourceResult, ttl time.Duration) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("failed to encode result for cache", zap.Error(err), zap.String("key", key))
		return
	}

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO source_cache (cache_key, result, stored_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
	`, key, payload, time.Now().Format(time.RFC3339), int64(ttl.Seconds()))
	if err != nil {
		c.logger.Error("failed to insert cache entry", zap.Error(err), zap.String("key", key))
		return
	}

	atomic.AddInt64(&c.sets, 1)
}

// Has reports whether a result younger than maxAge exists for the key
func (c *SQLiteCache) Has(key string, maxAge time.Duration) bool {
	var storedAt string
	err := c.db.QueryRow(`
		SELECT stored_at FROM source_cache WHERE cache_key = ?
	`, key).Scan(&storedAt)
	if err != nil {
		return false
	}
	stored, err := time.Parse(time.RFC3339, storedAt)
	if err != nil {
		return false
	}
	return time.Since(stored) < maxAge
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(key string) {
	if _, err := c.db.Exec(`DELETE FROM source_cache WHERE cache_key = ?`, key); err != nil {
		c.logger.Error("failed to delete cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Clear removes all entries
func (c *SQLiteCache) Clear() {
	if _, err := c.db.Exec(`DELETE FROM source_cache`); err != nil {
		c.logger.Error("failed to clear cache", zap.Error(err))
	}
}

// Keys returns the keys of all physically present entries
func (c *SQLiteCache) Keys() []string {
	rows, err := c.db.Query(`SELECT cache_key FROM source_cache`)
	if err != nil {
		c.logger.Error("failed to list cache keys", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			c.logger.Error("failed to scan cache key", zap.Error(err))
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

// Stats returns hit/miss/set counters and current size
func (c *SQLiteCache) Stats() core.CacheStats {
	var size int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM source_cache`).Scan(&size); err != nil {
		c.logger.Error("failed to count cache entries", zap.Error(err))
	}

	stats := core.CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Sets:   atomic.LoadInt64(&c.sets),
		Size:   size,
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// cleanup removes entries whose own TTL has elapsed
func (c *SQLiteCache) cleanup() {
	result, err := c.db.Exec(`
		DELETE FROM source_cache
		WHERE datetime(stored_at, '+' || ttl_seconds || ' seconds') <= datetime('now')
	`)
	if err != nil {
		c.logger.Error("failed to clean up expired entries", zap.Error(err))
		return
	}

	if expired, err := result.RowsAffected(); err == nil && expired > 0 {
		c.logger.Debug("swept expired cache entries", zap.Int64("expired_count", expired))
	}
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("failed to close SQLite database", zap.Error(err))
	}
}
