package rebalance

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

func TestPoolCache(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := NewPoolCache(5 * time.Second)
	cache.now = func() time.Time { return now }

	fetches := 0
	fetch := func(ctx context.Context, poolID string) (model.PoolSnapshot, error) {
		fetches++
		return model.PoolSnapshot{
			PoolID:           poolID,
			CurrentTick:      int32(fetches),
			CurrentSqrtPrice: big.NewInt(1),
			TickSpacing:      60,
		}, nil
	}

	ctx := context.Background()

	snap, err := cache.Get(ctx, "0xpool", fetch)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if snap.CurrentTick != 1 || fetches != 1 {
		t.Fatalf("expected one fetch, got %d", fetches)
	}

	// Within the TTL the same snapshot comes back without a fetch.
	now = now.Add(4 * time.Second)
	snap, err = cache.Get(ctx, "0xpool", fetch)
	if err != nil {
		t.Fatalf("fresh get: %v", err)
	}
	if snap.CurrentTick != 1 || fetches != 1 {
		t.Fatalf("cache should have served the entry, fetches=%d tick=%d", fetches, snap.CurrentTick)
	}

	// Expiry triggers a refetch that replaces the entry.
	now = now.Add(2 * time.Second)
	snap, err = cache.Get(ctx, "0xpool", fetch)
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if snap.CurrentTick != 2 || fetches != 2 {
		t.Fatalf("expected refetch, fetches=%d tick=%d", fetches, snap.CurrentTick)
	}

	// Distinct pools get distinct entries.
	if _, err := cache.Get(ctx, "0xother", fetch); err != nil {
		t.Fatalf("other pool: %v", err)
	}
	if fetches != 3 {
		t.Fatalf("expected per-pool fetch, got %d", fetches)
	}
}

func TestPoolCacheFetchErrorDoesNotPoison(t *testing.T) {
	cache := NewPoolCache(time.Minute)
	ctx := context.Background()

	boom := errors.New("node down")
	_, err := cache.Get(ctx, "0xpool", func(context.Context, string) (model.PoolSnapshot, error) {
		return model.PoolSnapshot{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want fetch error, got %v", err)
	}

	// The failure must not be cached.
	snap, err := cache.Get(ctx, "0xpool", func(_ context.Context, id string) (model.PoolSnapshot, error) {
		return model.PoolSnapshot{PoolID: id, CurrentSqrtPrice: big.NewInt(1), TickSpacing: 2}, nil
	})
	if err != nil {
		t.Fatalf("recovery get: %v", err)
	}
	if snap.PoolID != "0xpool" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestPoolCacheInvalidate(t *testing.T) {
	cache := NewPoolCache(time.Hour)
	ctx := context.Background()

	fetches := 0
	fetch := func(_ context.Context, id string) (model.PoolSnapshot, error) {
		fetches++
		return model.PoolSnapshot{PoolID: id, CurrentSqrtPrice: big.NewInt(1), TickSpacing: 2}, nil
	}

	if _, err := cache.Get(ctx, "0xpool", fetch); err != nil {
		t.Fatalf("get: %v", err)
	}
	cache.Invalidate("0xpool")
	if _, err := cache.Get(ctx, "0xpool", fetch); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if fetches != 2 {
		t.Fatalf("expected refetch after invalidate, got %d", fetches)
	}
}
