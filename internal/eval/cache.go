package eval

import "sync"

// Cache stores intermediate and final results keyed by a graph key's
// canonical string form. The interface shape (a get/set pair guarding a
// fast in-memory lookup) is grounded on the teacher's core.Cache, reshaped
// from its disk-backed Has/Get/Put trio into a single-collection in-memory
// map: this evaluator never persists across process runs, so there is no
// cache-miss-vs-absent distinction worth a separate Has.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemCache is the default Cache: a mutex-guarded map, safe for concurrent
// use by callers that evaluate multiple output sets against a shared cache.
type MemCache struct {
	mu   sync.RWMutex
	vals map[string]any
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{vals: make(map[string]any)}
}

func (c *MemCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vals[key]
	return v, ok
}

func (c *MemCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = value
}
