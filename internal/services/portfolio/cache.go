package portfolio

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a computed performance series is reused.
const DefaultCacheTTL = 60 * time.Second

const (
	kindPortfolio = "portfolio"
	kindTicker    = "ticker"
	kindMulti     = "multi"
)

type cacheKey struct {
	kind      string
	portfolio string
	ticker    string
	start     string
}

type cacheEntry struct {
	data       any
	computedAt time.Time
}

// performanceCache memoizes computed series with a fixed TTL. A single lock
// guards the map; the underlying computation is not single-flighted, so two
// concurrent misses on the same key may both compute. That race is benign:
// both compute the same value from the same data.
type performanceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

func newPerformanceCache(ttl time.Duration) *performanceCache {
	return &performanceCache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		now:     time.Now,
	}
}

func (c *performanceCache) get(key cacheKey) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.computedAt) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

func (c *performanceCache) put(key cacheKey, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, computedAt: c.now()}
}

// invalidate drops every entry for the portfolio. With tickers given, only
// their ticker-level entries are dropped; portfolio-level and multi-ticker
// entries always go, since any transaction change affects them.
func (c *performanceCache) invalidate(portfolio string, tickers ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.portfolio != portfolio {
			continue
		}
		if key.kind == kindTicker && len(tickers) > 0 {
			for _, t := range tickers {
				if key.ticker == t {
					delete(c.entries, key)
					break
				}
			}
			continue
		}
		delete(c.entries, key)
	}
}
