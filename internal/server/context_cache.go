package server

import (
	"sync"
	"time"

	"restyle/extract"
)

// contextCache memoizes extraction results per URL for a fixed TTL.
// A non-positive TTL disables it. Expired entries are dropped lazily on
// lookup; the working set is small enough that no sweeper is needed.
type contextCache struct {
	mu   sync.RWMutex
	now  func() time.Time
	ttl  time.Duration
	data map[string]cacheEntry
}

type cacheEntry struct {
	ctx     *extract.DesignContext
	shot    *extract.ScreenshotProfile
	created time.Time
}

func newContextCache(now func() time.Time, ttl time.Duration) *contextCache {
	return &contextCache{
		now:  now,
		ttl:  ttl,
		data: make(map[string]cacheEntry),
	}
}

func (c *contextCache) get(url string) (*extract.DesignContext, *extract.ScreenshotProfile, bool) {
	if c.ttl <= 0 {
		return nil, nil, false
	}
	c.mu.RLock()
	entry, ok := c.data[url]
	c.mu.RUnlock()
	if !ok {
		return nil, nil, false
	}
	if c.now().Sub(entry.created) > c.ttl {
		c.mu.Lock()
		if cur, ok := c.data[url]; ok && cur.created == entry.created {
			delete(c.data, url)
		}
		c.mu.Unlock()
		return nil, nil, false
	}
	return entry.ctx, entry.shot, true
}

func (c *contextCache) store(url string, ctx *extract.DesignContext, shot *extract.ScreenshotProfile) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.data[url] = cacheEntry{ctx: ctx, shot: shot, created: c.now()}
	c.mu.Unlock()
}

func (c *contextCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
