package cricbuzz

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// ttlCache is a small expiring cache for upstream responses. The clock is
// injected so expiry can be tested without sleeping.
type ttlCache struct {
	clk clock.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

func newTTLCache(clk clock.Clock) *ttlCache {
	return &ttlCache{
		clk:     clk,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clk.Now().Before(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.clk.Now().Add(ttl)}
}
