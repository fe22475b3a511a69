package translation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyNormalization(t *testing.T) {
	a := CacheKey("Hello World", "es")
	b := CacheKey("  hello   world ", "es")
	assert.Equal(t, a, b, "cosmetic whitespace and case share one entry")

	assert.NotEqual(t, a, CacheKey("Hello World", "fr"), "target language is part of the key")
	assert.NotEqual(t, a, CacheKey("Goodbye World", "es"))
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache(10, time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k1", "hola")
	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "hola", got)

	c.Set("k1", "hola otra vez")
	got, _ = c.Get("k1")
	assert.Equal(t, "hola otra vez", got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(10, time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must not be returned")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on access")
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache(3, time.Hour)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("a", "1")
	current = current.Add(time.Second)
	c.Set("b", "2")
	current = current.Add(time.Second)
	c.Set("c", "3")

	// Touch "a" so "b" becomes the least recently accessed.
	current = current.Add(time.Second)
	_, ok := c.Get("a")
	require.True(t, ok)

	current = current.Add(time.Second)
	c.Set("d", "4")

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently accessed entry is evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "key %s should survive", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCacheCleanup(t *testing.T) {
	c := NewCache(10, time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("old1", "v")
	c.Set("old2", "v")
	current = current.Add(2 * time.Minute)
	c.Set("fresh", "v")

	removed := c.Cleanup()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(10, time.Hour)

	c.Set("k", "value")
	c.Get("k")
	c.Get("k")
	c.Get("nope")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 0.001)
	assert.Greater(t, stats.MemoryUsage, int64(0))

	c.Clear()
	stats = c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, 0, stats.Entries)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%50)
				c.Set(key, "value")
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
	stats := c.Stats()
	assert.Equal(t, int64(8*200), stats.Hits+stats.Misses)
}
