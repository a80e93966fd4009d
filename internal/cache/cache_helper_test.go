package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) *Helper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewHelper(client, "test:")
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	helper := newTestHelper(t)

	in := payload{Name: "analytics", Count: 3}
	if err := helper.Set(ctx, "key", in, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out payload
	if err := helper.Get(ctx, "key", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != in {
		t.Errorf("Got %+v, want %+v", out, in)
	}
}

func TestHelper_GetMissingKey(t *testing.T) {
	helper := newTestHelper(t)

	var out payload
	err := helper.Get(context.Background(), "absent", &out)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper := newTestHelper(t)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return payload{Name: "fetched", Count: fetches}, nil
	}

	var first payload
	if err := helper.CacheOrExecute(ctx, "key", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}

	var second payload
	if err := helper.CacheOrExecute(ctx, "key", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}

	if fetches != 1 {
		t.Errorf("Expected one fetch, got %d", fetches)
	}
	if second != first {
		t.Errorf("Second read %+v should come from cache, want %+v", second, first)
	}
}

func TestHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper := newTestHelper(t)

	for _, key := range []string{"sections:list", "sections:1", "stats:global"} {
		if err := helper.Set(ctx, key, payload{Name: key}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "sections*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var out payload
	if err := helper.Get(ctx, "sections:list", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected sections:list invalidated, got %v", err)
	}
	if err := helper.Get(ctx, "stats:global", &out); err != nil {
		t.Errorf("Expected stats:global untouched, got %v", err)
	}
}

func TestHelper_DegradesWithoutClient(t *testing.T) {
	ctx := context.Background()
	helper := NewHelper(nil, "test:")

	if err := helper.Set(ctx, "key", payload{}, time.Minute); err != nil {
		t.Errorf("Set without client should be a no-op, got %v", err)
	}

	var out payload
	if err := helper.Get(ctx, "key", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}

	// CacheOrExecute still serves the fetched value.
	err := helper.CacheOrExecute(ctx, "key", &out, time.Minute, func() (interface{}, error) {
		return payload{Name: "direct", Count: 1}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if out.Name != "direct" {
		t.Errorf("Expected fetched value, got %+v", out)
	}
}
