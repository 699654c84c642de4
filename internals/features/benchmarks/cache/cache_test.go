package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"maturity_backend/internals/databases/dbtest"
)

func TestMemoryEvictsAndExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, 50*time.Millisecond)
	_ = m.Set(ctx, "a", []byte("1"), 0)
	_ = m.Set(ctx, "b", []byte("2"), 0)
	_ = m.Set(ctx, "c", []byte("3"), 0)

	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Fatal("a should have been evicted")
	}
	if v, ok, _ := m.Get(ctx, "c"); !ok || string(v) != "3" {
		t.Fatalf("c = %q, %v", v, ok)
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, "c"); ok {
		t.Fatal("c should have expired")
	}
}

func TestPersistedHonoursExpiry(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewPersisted(db).WithClock(func() time.Time { return now })

	if err := p.Set(ctx, "k", []byte(`{"v":1}`), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := p.Set(ctx, "k", []byte(`{"v":2}`), time.Hour); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(v) != `{"v":2}` {
		t.Fatalf("get = %s %v %v", v, ok, err)
	}

	later := p.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	if _, ok, _ := later.Get(ctx, "k"); ok {
		t.Fatal("expired row returned")
	}
	if n, err := later.Purge(ctx); err != nil || n != 1 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestTieredBackfillsAndCoalesces(t *testing.T) {
	ctx := context.Background()
	fast := NewMemory(8, time.Minute)
	slow := NewMemory(8, time.Minute)
	_ = slow.Set(ctx, "warm", []byte("w"), 0)

	tc := NewTiered(fast, brokenStore{}, slow)
	if v, ok := tc.Get(ctx, "warm", time.Minute); !ok || string(v) != "w" {
		t.Fatalf("warm = %q %v", v, ok)
	}
	if _, ok, _ := fast.Get(ctx, "warm"); !ok {
		t.Fatal("fast tier not backfilled")
	}

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("loaded"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tc.GetOrLoad(ctx, "cold", time.Minute, load)
			if err != nil || string(v) != "loaded" {
				t.Errorf("GetOrLoad = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("load called %d times", n)
	}
	if _, ok, _ := slow.Get(ctx, "cold"); !ok {
		t.Fatal("value not written through")
	}
}

func TestTieredDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	tc := NewTiered(NewMemory(8, time.Minute))
	boom := errors.New("upstream")
	if _, err := tc.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := tc.Get(ctx, "k", time.Minute); ok {
		t.Fatal("failure cached")
	}
}
