package cricbuzz

import (
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	cache := newTTLCache(clk)

	cache.set("live", "payload", time.Minute)

	v, ok := cache.get("live")
	assert.True(t, ok)
	assert.Equal(t, "payload", v)

	clk.Advance(59 * time.Second)
	_, ok = cache.get("live")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = cache.get("live")
	assert.False(t, ok, "entry must expire once the TTL elapses")
}

func TestTTLCacheMiss(t *testing.T) {
	cache := newTTLCache(testclock.NewClock(time.Now()))
	_, ok := cache.get("missing")
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLNotStored(t *testing.T) {
	cache := newTTLCache(testclock.NewClock(time.Now()))
	cache.set("k", 1, 0)
	_, ok := cache.get("k")
	assert.False(t, ok)
}
