package app

import (
	"sync"

	"github.com/tacogips/dcg/internal/debug"
	"github.com/tacogips/dcg/internal/host"
)

// unitCache holds compiled units by UnitKey. When maxEntries is positive
// the least recently used unit is evicted first.
type unitCache struct {
	mu         sync.Mutex
	maxEntries int
	units      map[string]host.Unit
	order      []string
}

func newUnitCache(maxEntries int) *unitCache {
	return &unitCache{
		maxEntries: maxEntries,
		units:      make(map[string]host.Unit),
	}
}

func (c *unitCache) get(key string) (host.Unit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.units[key]
	if ok {
		c.touch(key)
	}
	return u, ok
}

func (c *unitCache) put(key string, u host.Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.units[key]; ok {
		c.units[key] = u
		c.touch(key)
		return
	}

	c.units[key] = u
	c.order = append(c.order, key)
	for c.maxEntries > 0 && len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.units, oldest)
		debug.Debug("[app] Evicted cached unit %s", shortKey(oldest))
	}
}

func (c *unitCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.units)
}

// touch moves key to the most recently used end. Callers hold mu.
func (c *unitCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), key)
			return
		}
	}
}

// shortKey abbreviates a unit key for logging.
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
