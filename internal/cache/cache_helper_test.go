package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheHelper(client, prefix), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t, "test:")
	ctx := context.Background()

	type payload struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}

	want := payload{ID: 7, Title: "Databases midterm"}
	if err := helper.Set(ctx, "id:7", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper, _ := newTestHelper(t, "test:")

	var dest map[string]any
	err := helper.Get(context.Background(), "id:999", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", "x", time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v, want nil", err)
	}

	var dest string
	if err := helper.Get(ctx, "id:1", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t, "question:")
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := helper.SetString(ctx, fmt.Sprintf("test:3:q:%d", i), "cached", time.Minute); err != nil {
			t.Fatalf("SetString() error = %v", err)
		}
	}
	if err := helper.SetString(ctx, "test:4:q:1", "cached", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "test:3:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	for i := 1; i <= 5; i++ {
		if mr.Exists(fmt.Sprintf("question:test:3:q:%d", i)) {
			t.Errorf("key question:test:3:q:%d still present after invalidation", i)
		}
	}
	if !mr.Exists("question:test:4:q:1") {
		t.Error("unrelated key was removed by invalidation")
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t, "stats:")
	ctx := context.Background()

	t.Run("executes fetch on miss and caches result", func(t *testing.T) {
		calls := 0
		fetch := func() (interface{}, error) {
			calls++
			return map[string]int{"total": 42}, nil
		}

		var got map[string]int
		if err := helper.CacheOrExecute(ctx, "test:1", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got["total"] != 42 {
			t.Errorf("got total = %d, want 42", got["total"])
		}
		if calls != 1 {
			t.Errorf("fetch called %d times, want 1", calls)
		}
	})

	t.Run("serves cached value without fetch", func(t *testing.T) {
		if err := helper.Set(ctx, "test:2", map[string]int{"total": 7}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		fetch := func() (interface{}, error) {
			t.Fatal("fetch must not run on cache hit")
			return nil, nil
		}

		var got map[string]int
		if err := helper.CacheOrExecute(ctx, "test:2", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got["total"] != 7 {
			t.Errorf("got total = %d, want 7", got["total"])
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		wantErr := errors.New("db down")
		var got map[string]int
		err := helper.CacheOrExecute(ctx, "test:3", &got, time.Minute, func() (interface{}, error) {
			return nil, wantErr
		})
		if err == nil || !errors.Is(err, wantErr) {
			t.Errorf("CacheOrExecute() error = %v, want wrapped %v", err, wantErr)
		}
	})
}

func TestCacheManager_InvalidateSetting(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Setting.SetString(ctx, "camera_required_globally", "true", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if err := cm.InvalidateSetting(ctx, "camera_required_globally"); err != nil {
		t.Fatalf("InvalidateSetting() error = %v", err)
	}
	if mr.Exists("setting:camera_required_globally") {
		t.Error("setting key still cached after invalidation")
	}
}
