package rebalance

import (
	"context"
	"sync"
	"time"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

// DefaultPoolTTL bounds how stale a pool snapshot may be before the next
// check refetches it. Within the TTL every step of a rebalance flow sees the
// same snapshot, which keeps one flow's math self-consistent.
const DefaultPoolTTL = 5 * time.Second

type poolCacheEntry struct {
	snapshot  model.PoolSnapshot
	fetchedAt time.Time
}

// PoolCache is a TTL cache of pool snapshots keyed by pool ID. Entries are
// replaced wholesale; there is no partial refresh.
type PoolCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]poolCacheEntry
}

func NewPoolCache(ttl time.Duration) *PoolCache {
	if ttl <= 0 {
		ttl = DefaultPoolTTL
	}
	return &PoolCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]poolCacheEntry),
	}
}

// Get returns the cached snapshot while it is fresh, otherwise fetches a new
// one and stores it. A failed fetch leaves the previous entry untouched, so
// the next call retries.
func (c *PoolCache) Get(ctx context.Context, poolID string, fetch func(context.Context, string) (model.PoolSnapshot, error)) (model.PoolSnapshot, error) {
	c.mu.Lock()
	entry, ok := c.entries[poolID]
	fresh := ok && c.now().Sub(entry.fetchedAt) < c.ttl
	c.mu.Unlock()
	if fresh {
		return entry.snapshot, nil
	}

	snapshot, err := fetch(ctx, poolID)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	c.mu.Lock()
	c.entries[poolID] = poolCacheEntry{snapshot: snapshot, fetchedAt: c.now()}
	c.mu.Unlock()
	return snapshot, nil
}

// Invalidate drops a pool's entry so the next Get refetches.
func (c *PoolCache) Invalidate(poolID string) {
	c.mu.Lock()
	delete(c.entries, poolID)
	c.mu.Unlock()
}
