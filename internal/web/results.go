package web

import (
	"sync"
	"time"

	"github.com/JonMunkholm/cyclesheet/internal/core"
)

// resultTTL is how long a processed batch stays downloadable.
const resultTTL = 30 * time.Minute

// maxCachedResults bounds the cache; the oldest entry is evicted first.
const maxCachedResults = 100

// resultCache keeps recent batch results so the summary page can offer
// downloads without re-uploading the PDFs.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cachedResult
	ttl     time.Duration
	now     func() time.Time
}

type cachedResult struct {
	result  *core.BatchResult
	created time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		entries: make(map[string]cachedResult),
		ttl:     ttl,
		now:     time.Now,
	}
}

// put stores res under its batch ID.
func (c *resultCache) put(res *core.BatchResult) {
	if res == nil || res.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked()
	if len(c.entries) >= maxCachedResults {
		var oldestID string
		var oldest time.Time
		for id, e := range c.entries {
			if oldestID == "" || e.created.Before(oldest) {
				oldestID, oldest = id, e.created
			}
		}
		delete(c.entries, oldestID)
	}
	c.entries[res.ID] = cachedResult{result: res, created: c.now()}
}

// get returns the result for id if it has not expired.
func (c *resultCache) get(id string) (*core.BatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.created) > c.ttl {
		delete(c.entries, id)
		return nil, false
	}
	return e.result, true
}

func (c *resultCache) evictLocked() {
	now := c.now()
	for id, e := range c.entries {
		if now.Sub(e.created) > c.ttl {
			delete(c.entries, id)
		}
	}
}
