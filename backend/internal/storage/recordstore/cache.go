package recordstore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Serubin/AJD-Site/shared/logger"
)

type cacheEntry struct {
	page      Page
	fetchedAt time.Time
}

// CachedTable serves List from memory for ttl. Writes go straight through and
// drop every cached page.
type CachedTable struct {
	next  Table
	ttl   time.Duration
	name  string
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// Cached wraps t. A ttl of zero or less returns t unchanged.
func Cached(t Table, name string, ttl time.Duration) Table {
	if ttl <= 0 {
		return t
	}
	return &CachedTable{
		next:    t,
		ttl:     ttl,
		name:    name,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedTable) List(ctx context.Context, params ListParams) (Page, error) {
	key := params.cacheKey()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.page, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		page, err := c.next.List(ctx, params)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{page: page, fetchedAt: c.now()}
		c.mu.Unlock()
		return page, nil
	})
	if err != nil {
		if ok {
			logger.Log.Warn("serving stale records after failed refresh",
				"component", "cache", "table", c.name, "error", err)
			return entry.page, nil
		}
		return Page{}, err
	}
	return v.(Page), nil
}

func (c *CachedTable) Create(ctx context.Context, data Record) (Record, error) {
	rec, err := c.next.Create(ctx, data)
	if err == nil {
		c.Invalidate()
	}
	return rec, err
}

func (c *CachedTable) Update(ctx context.Context, id int64, data Record) (Record, error) {
	rec, err := c.next.Update(ctx, id, data)
	if err == nil {
		c.Invalidate()
	}
	return rec, err
}

// Invalidate drops every cached page.
func (c *CachedTable) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
