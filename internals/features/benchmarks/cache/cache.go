// Package cache holds the benchmark cache: a bounded in-memory tier in front of
// a persisted gorm tier, behind one Store port.
package cache

import (
	"context"
	"time"
)

// Store is one cache tier. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
