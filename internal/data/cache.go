package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"macro-backtest/internal/model"
)

// CacheEntry represents a cached series fetch
type CacheEntry struct {
	Series    model.Series
	ExpiresAt time.Time
}

// SeriesCache provides in-memory caching for downloaded series.
//
// ⚠️ WARNING: This cache is for LOCAL DEVELOPMENT ONLY.
//
// Caching provider responses may violate source Terms of Use.
// Before enabling this feature:
//   1. Review the terms of each data source (FRED, Yahoo, FiscalData)
//   2. Confirm caching is allowed for your use case
//   3. Only enable in local development environments
//   4. Never enable in production without explicit permission
//
// This cache is automatically disabled when API_ENV=production.
type SeriesCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
}

var globalCache *SeriesCache
var cacheOnce sync.Once

// GetCache returns the global cache instance if caching is enabled.
// Returns nil if caching is disabled.
//
// ⚠️ DEVELOPMENT ONLY: This cache is automatically disabled in production.
// Check data source terms of use before enabling.
func GetCache() *SeriesCache {
	// Only enable cache if explicitly enabled via environment variable
	// AND only in development mode
	if os.Getenv("ENABLE_FETCH_CACHE") != "true" {
		return nil
	}

	// Additional safety check: only enable in development
	// This prevents accidental enabling in production
	env := os.Getenv("API_ENV")
	if env == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := 1 * time.Hour // Default TTL: 1 hour
		if ttlStr := os.Getenv("FETCH_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil {
				ttl = parsed
			}
		}

		globalCache = &SeriesCache{
			store: make(map[string]*CacheEntry),
			ttl:   ttl,
		}

		// Start cleanup goroutine
		go globalCache.cleanup()
	})

	return globalCache
}

// Get retrieves a cached series if available and not expired
func (c *SeriesCache) Get(key string) (model.Series, bool) {
	if c == nil {
		return model.Series{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return model.Series{}, false
	}

	// Check if expired
	if time.Now().After(entry.ExpiresAt) {
		return model.Series{}, false
	}

	return entry.Series, true
}

// Set stores a series in the cache
func (c *SeriesCache) Set(key string, series model.Series) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Series:    series,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Clear removes all entries from the cache
func (c *SeriesCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// cleanup periodically removes expired entries
func (c *SeriesCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.store {
			if now.After(entry.ExpiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

// GenerateCacheKey creates a cache key from fetch parameters
func GenerateCacheKey(source, id string, start, end time.Time) string {
	// Create a deterministic key from all parameters
	keyStr := fmt.Sprintf("%s:%s:%s:%s",
		source,
		id,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)

	// Hash the key to keep it reasonably sized
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
