package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestBumpShiftsCacheKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, 1, keyTrialBalance("all", "all")...)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if err := cache.Bump(ctx, 1); err != nil {
		t.Fatalf("bump: %v", err)
	}
	after, err := cache.BuildKey(ctx, 1, keyTrialBalance("all", "all")...)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if before == after {
		t.Fatalf("bump must change the key, got %s twice", before)
	}
}

func TestBumpIsScopedPerOrganization(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	otherBefore, err := cache.BuildKey(ctx, 2, keyGeneralLedger("all", "all")...)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if err := cache.Bump(ctx, 1); err != nil {
		t.Fatalf("bump: %v", err)
	}
	otherAfter, err := cache.BuildKey(ctx, 2, keyGeneralLedger("all", "all")...)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if otherBefore != otherAfter {
		t.Fatal("bumping org 1 must not invalidate org 2")
	}
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]int{"value": 42}, nil
	}

	key, err := cache.BuildKey(ctx, 1, "tb", "all", "all")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	var first, second map[string]int
	if err := cache.FetchJSON(ctx, key, &first, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := cache.FetchJSON(ctx, key, &second, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single loader call, got %d", calls)
	}
	if second["value"] != 42 {
		t.Fatalf("unexpected cached value: %+v", second)
	}
}

func TestNilCacheFallsThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	var out map[string]int
	err := cache.FetchJSON(ctx, "ignored", &out, func(context.Context) (interface{}, error) {
		return map[string]int{"value": 7}, nil
	})
	if err != nil {
		t.Fatalf("nil cache fetch: %v", err)
	}
	if out["value"] != 7 {
		t.Fatalf("unexpected value: %+v", out)
	}
	if err := cache.Bump(ctx, 1); err != nil {
		t.Fatalf("nil cache bump: %v", err)
	}
}
