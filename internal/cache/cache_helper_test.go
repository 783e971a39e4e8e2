package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:"), mr
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	want := cachedValue{Name: "midterm", Count: 3}
	if err := helper.Set(ctx, "item:1", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "item:1", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedValue
	err := helper.Get(context.Background(), "missing", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperKeyPrefix(t *testing.T) {
	helper, mr := newTestHelper(t)

	if err := helper.Set(context.Background(), "item:1", "x", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if !mr.Exists("test:item:1") {
		t.Error("stored key is missing the helper prefix")
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	_ = helper.Set(ctx, "a", 1, time.Minute)
	_ = helper.Set(ctx, "b", 2, time.Minute)

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists("test:a") || mr.Exists("test:b") {
		t.Error("deleted keys still present")
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	_ = helper.Set(ctx, "list:1", 1, time.Minute)
	_ = helper.Set(ctx, "list:2", 2, time.Minute)
	_ = helper.Set(ctx, "detail:1", 3, time.Minute)

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	if mr.Exists("test:list:1") || mr.Exists("test:list:2") {
		t.Error("pattern keys should be gone")
	}
	if !mr.Exists("test:detail:1") {
		t.Error("non-matching key should survive")
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v, want nil", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() with nil client error = %v, want nil", err)
	}
	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Errorf("InvalidatePattern() with nil client error = %v, want nil", err)
	}

	var got int
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	t.Run("cache miss runs fetch and writes back", func(t *testing.T) {
		helper, mr := newTestHelper(t)
		ctx := context.Background()

		calls := 0
		var got cachedValue
		err := helper.CacheOrExecute(ctx, "item:1", &got, time.Minute, func() (interface{}, error) {
			calls++
			return cachedValue{Name: "fetched", Count: 1}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch ran %d times, want 1", calls)
		}
		if got.Name != "fetched" {
			t.Errorf("got %+v, want the fetched value", got)
		}

		// The write-back is asynchronous; wait for it to land.
		deadline := time.Now().Add(2 * time.Second)
		for !mr.Exists("test:item:1") {
			if time.Now().After(deadline) {
				t.Fatal("cached value never written back")
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("cache hit skips fetch", func(t *testing.T) {
		helper, _ := newTestHelper(t)
		ctx := context.Background()

		if err := helper.Set(ctx, "item:1", cachedValue{Name: "cached"}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		var got cachedValue
		err := helper.CacheOrExecute(ctx, "item:1", &got, time.Minute, func() (interface{}, error) {
			t.Error("fetch must not run on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got.Name != "cached" {
			t.Errorf("got %+v, want the cached value", got)
		}
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		helper, _ := newTestHelper(t)

		wantErr := errors.New("database down")
		var got cachedValue
		err := helper.CacheOrExecute(context.Background(), "item:1", &got, time.Minute, func() (interface{}, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("CacheOrExecute() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("nil client still serves the fetched value", func(t *testing.T) {
		helper := NewCacheHelper(nil, "")

		var got cachedValue
		err := helper.CacheOrExecute(context.Background(), "item:1", &got, time.Minute, func() (interface{}, error) {
			return cachedValue{Name: "direct"}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got.Name != "direct" {
			t.Errorf("got %+v, want the fetched value", got)
		}
	})
}

func TestNewCacheManagerNilClient(t *testing.T) {
	cm := NewCacheManager(nil)

	if cm.Assessment == nil || cm.Question == nil || cm.Stats == nil || cm.Fast == nil {
		t.Fatal("all helpers must exist even without a client")
	}
	if err := cm.Assessment.Set(context.Background(), "k", 1, time.Minute); err != nil {
		t.Errorf("pass-through Set() error = %v", err)
	}
}
