package palette

import "sync"

// Cache stores colors resolved outside the static table
// Values for a language are treated as immutable once set
type Cache interface {
	Get(language string) (string, bool)
	Set(language, color string)
	Len() int
}

// MemoryCache is a process lifetime Cache
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryCache constructs an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

// Get returns the cached color for language
func (c *MemoryCache) Get(language string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[language]
	return v, ok
}

// Set stores color for language, first write wins
func (c *MemoryCache) Set(language, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[language]; ok {
		return
	}
	c.m[language] = color
}

// Len returns the number of cached languages
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
