package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"staybook/internal/domain"
	"staybook/pkg/logger"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, logger.Nop(), "staybook"), mr
}

func newLocalCache(t *testing.T) *LocalCache {
	c := NewLocalCache(0, logger.Nop())
	t.Cleanup(c.Close)
	return c
}

func caches(t *testing.T) map[string]Cache {
	rc, _ := newRedisCache(t)
	return map[string]Cache{
		"redis": rc,
		"local": newLocalCache(t),
	}
}

func TestCache_SetGetDelete(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var got item
			if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
				t.Fatalf("Get(empty) err = %v, want ErrCacheMiss", err)
			}

			if err := c.Set(ctx, "k", item{Name: "a", Count: 2}, time.Minute); err != nil {
				t.Fatal(err)
			}
			if err := c.Get(ctx, "k", &got); err != nil {
				t.Fatal(err)
			}
			if got.Name != "a" || got.Count != 2 {
				t.Errorf("Get() = %+v", got)
			}

			ok, err := c.Exists(ctx, "k")
			if err != nil || !ok {
				t.Errorf("Exists() = %v, %v", ok, err)
			}

			c.Delete(ctx, "k")
			if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Get() after Delete err = %v", err)
			}

			if err := c.Ping(ctx); err != nil {
				t.Errorf("Ping() = %v", err)
			}
		})
	}
}

func TestCache_InvalidatePrefix(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c.Set(ctx, HotelListKey, []int{1}, time.Minute)
			c.Set(ctx, HotelCacheKey(1), item{Name: "h"}, time.Minute)
			c.Set(ctx, "booking:1", item{Name: "b"}, time.Minute)

			if err := c.InvalidatePrefix(ctx, HotelPrefix); err != nil {
				t.Fatal(err)
			}

			for _, key := range []string{HotelListKey, HotelCacheKey(1)} {
				if ok, _ := c.Exists(ctx, key); ok {
					t.Errorf("%s survived invalidation", key)
				}
			}
			if ok, _ := c.Exists(ctx, "booking:1"); !ok {
				t.Error("unrelated key removed")
			}
		})
	}
}

func TestRedisCache_PrefixAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	c.Set(ctx, "k", 1, time.Minute)
	if !mr.Exists("staybook:k") {
		t.Fatal("key stored without prefix")
	}

	mr.FastForward(2 * time.Minute)
	var v int
	if err := c.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired key err = %v", err)
	}
}

func TestCacheManager_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(newLocalCache(t), logger.Nop())

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return item{Name: "fresh", Count: calls}, nil
	}

	for i := 0; i < 3; i++ {
		var got item
		if err := cm.ReadThrough(ctx, "rt", &got, fetch, time.Minute); err != nil {
			t.Fatal(err)
		}
		if got.Name != "fresh" || got.Count != 1 {
			t.Errorf("read %d = %+v", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestCacheManager_ReadThroughFetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := newLocalCache(t)
	cm := NewCacheManager(c, logger.Nop())

	boom := errors.New("boom")
	var got item
	err := cm.ReadThrough(ctx, "rt", &got, func() (interface{}, error) { return nil, boom }, time.Minute)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if ok, _ := c.Exists(ctx, "rt"); ok {
		t.Error("failed fetch was cached")
	}
}

func TestCacheManager_WriteThrough(t *testing.T) {
	ctx := context.Background()
	c := newLocalCache(t)
	cm := NewCacheManager(c, logger.Nop())

	var written interface{}
	err := cm.WriteThrough(ctx, "wt", item{Name: "w"}, func(v interface{}) error {
		written = v
		return nil
	}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if written == nil {
		t.Error("write func not called")
	}

	var got item
	if err := c.Get(ctx, "wt", &got); err != nil || got.Name != "w" {
		t.Errorf("cached = %+v, %v", got, err)
	}

	failed := cm.WriteThrough(ctx, "wt2", item{}, func(interface{}) error { return errors.New("no") }, time.Minute)
	if failed == nil {
		t.Error("write error swallowed")
	}
	if ok, _ := c.Exists(ctx, "wt2"); ok {
		t.Error("value cached despite failed write")
	}
}

type fakeLister struct {
	hotels []*domain.Hotel
	err    error
}

func (f *fakeLister) ListHotels(ctx context.Context) ([]*domain.Hotel, error) {
	return f.hotels, f.err
}

func TestWarmUpManager_WarmUpHotels(t *testing.T) {
	ctx := context.Background()
	c := newLocalCache(t)
	lister := &fakeLister{hotels: []*domain.Hotel{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}

	if err := NewWarmUpManager(c, lister, time.Minute, logger.Nop()).WarmUpHotels(ctx); err != nil {
		t.Fatal(err)
	}

	var list []*domain.Hotel
	if err := c.Get(ctx, HotelListKey, &list); err != nil || len(list) != 2 {
		t.Fatalf("list = %v, %v", list, err)
	}
	var h domain.Hotel
	if err := c.Get(ctx, HotelCacheKey(2), &h); err != nil || h.Name != "B" {
		t.Errorf("hotel 2 = %+v, %v", h, err)
	}

	lister.err = errors.New("down")
	if err := NewWarmUpManager(c, lister, 0, logger.Nop()).WarmUpHotels(ctx); err == nil {
		t.Error("expected lister error")
	}
}

type countingLister struct {
	calls atomic.Int32
}

func (c *countingLister) ListHotels(ctx context.Context) ([]*domain.Hotel, error) {
	c.calls.Add(1)
	return []*domain.Hotel{{ID: 1, Name: "A"}}, nil
}

func TestWarmUpManager_ScheduledWarmUp(t *testing.T) {
	lister := &countingLister{}
	w := NewWarmUpManager(newLocalCache(t), lister, time.Minute, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.ScheduledWarmUp(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for lister.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ScheduledWarmUp did not stop after cancel")
	}
	if lister.calls.Load() < 2 {
		t.Errorf("refreshes = %d, want >= 2", lister.calls.Load())
	}
}
