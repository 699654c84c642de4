package cache

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Tiered reads through its tiers in order and writes through all of them.
// A hit in a slower tier is copied into the faster ones.
type Tiered struct {
	tiers []Store
	group singleflight.Group
}

func NewTiered(tiers ...Store) *Tiered {
	return &Tiered{tiers: tiers}
}

func (t *Tiered) Get(ctx context.Context, key string, ttl time.Duration) ([]byte, bool) {
	for i, tier := range t.tiers {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			log.Printf("[CACHE] tier %d get %q: %v", i, key, err)
			continue
		}
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if err := t.tiers[j].Set(ctx, key, v, ttl); err != nil {
				log.Printf("[CACHE] tier %d backfill %q: %v", j, key, err)
			}
		}
		return v, true
	}
	return nil, false
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	for i, tier := range t.tiers {
		if err := tier.Set(ctx, key, value, ttl); err != nil {
			log.Printf("[CACHE] tier %d set %q: %v", i, key, err)
		}
	}
}

// GetOrLoad returns the cached value or calls load once per key, however many
// callers are waiting. A load error is returned and nothing is cached.
func (t *Tiered) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := t.Get(ctx, key, ttl); ok {
		return v, nil
	}
	v, err, _ := t.group.Do(key, func() (any, error) {
		if v, ok := t.Get(ctx, key, ttl); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		t.Set(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
