package docrender

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the fragment cache
type CacheConfig struct {
	// MaxSize is the maximum number of parsed fragments to keep. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached fragments. 0 means no expiration.
	TTL time.Duration
}

// parsedFragment is the cached result of Parse.
type parsedFragment struct {
	nodes  []Node
	issues []SyntaxIssue
}

// FragmentCache keeps parsed fragments keyed by a digest of their text. Only
// parse trees are stored, never variables or fetched images.
type FragmentCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key      string
	fragment *parsedFragment
	expiry   time.Time
	element  *list.Element
}

// NewFragmentCache creates a cache sized from the global configuration
func NewFragmentCache() *FragmentCache {
	config := GetGlobalConfig()
	return NewFragmentCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewFragmentCacheWithConfig creates a fragment cache with the given configuration
func NewFragmentCacheWithConfig(config CacheConfig) *FragmentCache {
	return &FragmentCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

func fragmentKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Parse returns the parsed form of content, parsing and storing it on a miss.
func (fc *FragmentCache) Parse(content string) ([]Node, []SyntaxIssue) {
	if fc == nil || fc.config.MaxSize <= 0 {
		return Parse(content)
	}

	key := fragmentKey(content)
	if pf, ok := fc.get(key); ok {
		return pf.nodes, pf.issues
	}

	nodes, issues := Parse(content)
	fc.set(key, &parsedFragment{nodes: nodes, issues: issues})
	return nodes, issues
}

func (fc *FragmentCache) get(key string) (*parsedFragment, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	entry, exists := fc.cache[key]
	if !exists {
		return nil, false
	}
	if fc.config.TTL > 0 && fc.now().After(entry.expiry) {
		fc.removeEntry(entry)
		return nil, false
	}
	fc.lru.MoveToFront(entry.element)
	return entry.fragment, true
}

func (fc *FragmentCache) set(key string, pf *parsedFragment) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var expiry time.Time
	if fc.config.TTL > 0 {
		expiry = fc.now().Add(fc.config.TTL)
	}

	if existing, exists := fc.cache[key]; exists {
		existing.fragment = pf
		existing.expiry = expiry
		fc.lru.MoveToFront(existing.element)
		return
	}

	// Evict least recently used
	for fc.lru.Len() >= fc.config.MaxSize {
		oldest := fc.lru.Back()
		if oldest == nil {
			break
		}
		fc.removeEntry(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{key: key, fragment: pf, expiry: expiry}
	entry.element = fc.lru.PushFront(entry)
	fc.cache[key] = entry
}

func (fc *FragmentCache) removeEntry(entry *cacheEntry) {
	delete(fc.cache, entry.key)
	fc.lru.Remove(entry.element)
}

// Clear removes all fragments from the cache
func (fc *FragmentCache) Clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cache = make(map[string]*cacheEntry)
	fc.lru = list.New()
}

// Size returns the current number of cached fragments
func (fc *FragmentCache) Size() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.cache)
}
