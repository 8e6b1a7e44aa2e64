package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"grid-backtest/internal/model"
)

// cacheEntry is one cached tick fetch.
type cacheEntry struct {
	Ticks     []model.Tick
	ExpiresAt time.Time
}

// TradesCache provides in-memory caching of provider tick fetches.
//
// This cache is for LOCAL DEVELOPMENT ONLY: caching provider responses may
// violate the data provider's terms of use. It is enabled only when
// ENABLE_TRADES_CACHE=true and never when API_ENV=production.
type TradesCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
}

var (
	globalCache *TradesCache
	cacheOnce   sync.Once
)

// GetCache returns the global cache instance if caching is enabled,
// nil otherwise.
func GetCache() *TradesCache {
	if os.Getenv("ENABLE_TRADES_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := time.Hour
		if s := os.Getenv("TRADES_CACHE_TTL"); s != "" {
			if parsed, err := time.ParseDuration(s); err == nil {
				ttl = parsed
			}
		}
		globalCache = &TradesCache{
			store: make(map[string]*cacheEntry),
			ttl:   ttl,
		}
		go globalCache.cleanup()
	})
	return globalCache
}

// Get retrieves cached ticks if present and not expired.
func (c *TradesCache) Get(key string) ([]model.Tick, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Ticks, true
}

// Set stores a fetch result.
func (c *TradesCache) Set(key string, ticks []model.Tick) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = &cacheEntry{
		Ticks:     ticks,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Clear removes all entries.
func (c *TradesCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}

func (c *TradesCache) cleanup() {
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

// CacheKey derives a deterministic key from a trades query.
func CacheKey(params TradesParams) string {
	mc := -1
	if params.MaxCorrection != nil {
		mc = *params.MaxCorrection
	}
	keyStr := fmt.Sprintf("%s:%d:%d:%v:%d",
		params.Symbol, params.StartNS, params.EndNS, params.ExcludeTRF, mc)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
