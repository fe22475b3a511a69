package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// TranslationCache is the advisory cache contract the orchestrator depends
// on. The pipeline must behave identically (only slower) when Get always
// misses.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// NullCache never stores anything. It exists to run the pipeline without
// caching.
type NullCache struct{}

func (NullCache) Get(string) (string, bool) { return "", false }
func (NullCache) Set(string, string)        {}

// CacheStats is a snapshot of cumulative cache counters.
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Entries     int     `json:"entries"`
	MemoryUsage int64   `json:"memory_usage"`
	HitRate     float64 `json:"hit_rate"`
}

// Fixed bookkeeping cost charged per entry in the memory estimate.
const cacheEntryOverhead = 96

type cacheEntry struct {
	value          string
	insertedAt     time.Time
	lastAccessedAt time.Time
	accessCount    int64
}

// Cache is a bounded in-memory translation cache with TTL expiry and
// least-recently-accessed eviction. All operations are safe for concurrent
// use; expiry wins over presence, so Get never returns a stale value.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration
	hits       int64
	misses     int64
	now        func() time.Time
}

// NewCache creates a cache bounded to maxEntries with the given TTL.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CacheKey builds the content-addressed key for a (content, target) pair.
// The content is normalized (trim, collapse whitespace, lowercase) before
// hashing so cosmetic differences share one entry.
func CacheKey(content, targetLanguage string) string {
	sum := sha256.Sum256([]byte(normalizeForKey(content)))
	return hex.EncodeToString(sum[:]) + ":" + targetLanguage
}

func normalizeForKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), " "))
}

// Get returns the cached value when present and unexpired, touching the
// access stats. Expired entries are removed and counted as misses.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	now := c.now()
	if now.Sub(entry.insertedAt) > c.ttl {
		delete(c.entries, key)
		c.misses++
		return "", false
	}
	entry.lastAccessedAt = now
	entry.accessCount++
	c.hits++
	return entry.value, true
}

// Set inserts or replaces a value. When inserting a new key into a full
// cache, the entry with the smallest lastAccessedAt is evicted first.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.insertedAt = now
		entry.lastAccessedAt = now
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{
		value:          value,
		insertedAt:     now,
		lastAccessedAt: now,
		accessCount:    0,
	}
}

// evictOldest removes the least recently accessed entry. Caller holds the
// lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessedAt.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccessedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Cleanup removes every entry older than the TTL and returns how many were
// dropped.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters. Memory usage is the sum
// of key and value byte lengths plus a fixed per-entry overhead.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var memory int64
	for key, entry := range c.entries {
		memory += int64(len(key) + len(entry.value) + cacheEntryOverhead)
	}
	stats := CacheStats{
		Hits:        c.hits,
		Misses:      c.misses,
		Entries:     len(c.entries),
		MemoryUsage: memory,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}
