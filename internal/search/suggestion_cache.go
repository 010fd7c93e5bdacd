package search

import (
	"strings"

	"github.com/kk-code-lab/medfind/internal/query"
)

// MaxCacheEntries bounds the suggestion cache.
const MaxCacheEntries = 100

// CacheKey builds the lookup key for a category and typed text.
func CacheKey(category query.Category, text string) string {
	return string(category) + ":" + strings.TrimSpace(text)
}

// SuggestionCache maps CacheKey values to suggestion lists. When full, the
// key inserted first is evicted; overwriting a key does not move it.
//
// The cache is owned by a single DebouncedFetcher and is not safe for
// concurrent use.
type SuggestionCache struct {
	entries  map[string][]string
	order    []string
	capacity int
}

func NewSuggestionCache(capacity int) *SuggestionCache {
	if capacity <= 0 {
		capacity = MaxCacheEntries
	}
	return &SuggestionCache{
		entries:  make(map[string][]string, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Get returns a copy of the cached suggestions for category and text.
func (c *SuggestionCache) Get(category query.Category, text string) ([]string, bool) {
	value, ok := c.entries[CacheKey(category, text)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(value))
	copy(out, value)
	return out, true
}

// Put stores suggestions. Empty text is never cached.
func (c *SuggestionCache) Put(category query.Category, text string, suggestions []string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	key := CacheKey(category, text)
	copyBuf := make([]string, len(suggestions))
	copy(copyBuf, suggestions)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = copyBuf
		return
	}
	c.entries[key] = copyBuf
	c.order = append(c.order, key)
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *SuggestionCache) Len() int {
	return len(c.entries)
}

// Keys returns the cached keys, oldest first.
func (c *SuggestionCache) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
