package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

const testPrefix = "mealcycle_test"

func testCache(t *testing.T, metrics *observability.Metrics) (*ReadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cache, err := NewReadCache(logger.Nop(), rdb, Config{KeyPrefix: testPrefix, TTL: time.Minute}, metrics)
	if err != nil {
		t.Fatalf("NewReadCache: %v", err)
	}
	return cache, mr
}

func TestReadCacheRoundTrip(t *testing.T) {
	cache, mr := testCache(t, nil)
	ctx := context.Background()

	var got []meals.MealCount
	ok, err := cache.Get(ctx, "counts", &got)
	if err != nil || ok {
		t.Fatalf("Get before Set: ok=%v err=%v", ok, err)
	}

	want := []meals.MealCount{{MealID: "x", Name: "Pasta", Count: 3}}
	if err := cache.Set(ctx, "counts", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists(testPrefix + ":counts") {
		t.Fatalf("expected the value under the key prefix, keys=%v", mr.Keys())
	}
	ok, err = cache.Get(ctx, "counts", &got)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected cached value: %+v", got)
	}

	if err := cache.Set(ctx, "names", []string{"Pasta"}); err != nil {
		t.Fatalf("Set names: %v", err)
	}
	if err := cache.Delete(ctx, "counts", "names"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("Delete left keys behind: %v", mr.Keys())
	}
	if err := cache.Delete(ctx); err != nil {
		t.Fatalf("Delete with no keys: %v", err)
	}
}

func TestReadCacheEntriesExpire(t *testing.T) {
	cache, mr := testCache(t, nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "week:latest", map[string]int{"week_number": 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(testPrefix + ":week:latest"); ttl != time.Minute {
		t.Fatalf("expected a one minute ttl, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	var got map[string]int
	ok, err := cache.Get(ctx, "week:latest", &got)
	if err != nil || ok {
		t.Fatalf("Get after expiry: ok=%v err=%v", ok, err)
	}
}

func TestReadCacheDropsUndecodablePayload(t *testing.T) {
	metrics := observability.New("cache_test")
	cache, mr := testCache(t, metrics)
	ctx := context.Background()

	if err := mr.Set(testPrefix+":counts", "{not json"); err != nil {
		t.Fatalf("seed payload: %v", err)
	}

	var got []meals.MealCount
	ok, err := cache.Get(ctx, "counts", &got)
	if err != nil || ok {
		t.Fatalf("Get on a bad payload: ok=%v err=%v", ok, err)
	}
	if mr.Exists(testPrefix + ":counts") {
		t.Fatalf("undecodable payload should be evicted")
	}

	if err := cache.Set(ctx, "counts", []meals.MealCount{{MealID: "y", Name: "Tacos", Count: 1}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, err := cache.Get(ctx, "counts", &got); err != nil || !ok {
		t.Fatalf("Get after repair: ok=%v err=%v", ok, err)
	}

	// counts/miss and counts/hit
	n, err := promtest.GatherAndCount(metrics.Registry(), "cache_test_cache_lookups_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected miss and hit series, got %d", n)
	}
}

func TestReadCacheSurfacesBackendErrors(t *testing.T) {
	cache, mr := testCache(t, nil)
	ctx := context.Background()

	mr.SetError("ERR simulated outage")
	var got []string
	if _, err := cache.Get(ctx, "names", &got); err == nil {
		t.Fatalf("expected the backend error from Get")
	}
	if err := cache.Set(ctx, "names", []string{"x"}); err == nil {
		t.Fatalf("expected the backend error from Set")
	}

	mr.SetError("")
	if err := cache.Set(ctx, "names", []string{"x"}); err != nil {
		t.Fatalf("Set after recovery: %v", err)
	}
}

func TestDialPingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb, err := Dial(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	if _, err := Dial(context.Background(), Config{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure against a stopped server")
	}
}

func TestDialRequiresAddr(t *testing.T) {
	if _, err := Dial(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewReadCacheDefaults(t *testing.T) {
	if _, err := NewReadCache(logger.Nop(), nil, Config{}, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cache, err := NewReadCache(logger.Nop(), rdb, Config{}, nil)
	if err != nil {
		t.Fatalf("NewReadCache: %v", err)
	}
	if cache.prefix != "mealcycle" || cache.ttl != 5*time.Minute {
		t.Fatalf("unexpected defaults prefix=%q ttl=%v", cache.prefix, cache.ttl)
	}
}
