package docrender

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentCache_Hit(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 10})

	first, _ := cache.Parse("<p>{name}</p>")
	second, _ := cache.Parse("<p>{name}</p>")
	require.Len(t, first, 3)
	assert.Same(t, first[1], second[1])
	assert.Equal(t, 1, cache.Size())

	other, _ := cache.Parse("<p>{other}</p>")
	assert.NotSame(t, first[1], other[1])
	assert.Equal(t, 2, cache.Size())
}

func TestFragmentCache_KeepsIssues(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 10})

	_, issues := cache.Parse("{IF a}open")
	assert.Len(t, issues, 1)
	_, issues = cache.Parse("{IF a}open")
	assert.Len(t, issues, 1)
}

func TestFragmentCache_Eviction(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 2})

	a, _ := cache.Parse("{a}")
	cache.Parse("{b}")
	cache.Parse("{a}") // a becomes most recent
	cache.Parse("{c}") // evicts b
	assert.Equal(t, 2, cache.Size())

	again, _ := cache.Parse("{a}")
	assert.Same(t, a[0], again[0])

	_, ok := cache.get(fragmentKey("{b}"))
	assert.False(t, ok)
}

func TestFragmentCache_TTL(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 10, TTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	first, _ := cache.Parse("{a}")
	now = now.Add(30 * time.Second)
	second, _ := cache.Parse("{a}")
	assert.Same(t, first[0], second[0])

	now = now.Add(2 * time.Minute)
	third, _ := cache.Parse("{a}")
	assert.NotSame(t, first[0], third[0])
}

func TestFragmentCache_Disabled(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 0})

	first, _ := cache.Parse("{a}")
	second, _ := cache.Parse("{a}")
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, 0, cache.Size())

	var nilCache *FragmentCache
	nodes, _ := nilCache.Parse("{a}")
	assert.Len(t, nodes, 1)
}

func TestFragmentCache_Concurrent(t *testing.T) {
	cache := NewFragmentCacheWithConfig(CacheConfig{MaxSize: 5})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nodes, _ := cache.Parse([]string{"{a}", "{b}", "{c}", "{d}", "{e}", "{f}", "{g}"}[i%7])
			assert.Len(t, nodes, 1)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 5)

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}
