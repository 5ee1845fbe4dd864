package folio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/content"
)

// LoadFunc produces a fresh snapshot.
type LoadFunc func(ctx context.Context) (content.Snapshot, error)

// SnapshotCache is an in-memory cache of the aggregated post set with TTL.
// A zero TTL never expires; Invalidate forces the next read to reload.
type SnapshotCache struct {
	mu      sync.RWMutex
	snap    *content.Snapshot
	fetched time.Time
	ttl     time.Duration
	load    LoadFunc
	now     func() time.Time
}

// NewSnapshotCache creates a SnapshotCache backed by load.
func NewSnapshotCache(load LoadFunc, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{load: load, ttl: ttl, now: time.Now}
}

func (c *SnapshotCache) valid() bool {
	if c.snap == nil {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// Get returns the cached snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SnapshotCache) Get(ctx context.Context) (content.Snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := *c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return *c.snap, nil
	}
	snap, err := c.load(ctx)
	if err != nil {
		return content.Snapshot{}, err
	}
	c.snap = &snap
	c.fetched = c.now()
	return snap, nil
}
