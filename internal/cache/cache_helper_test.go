package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "degree:"), mr
}

type cachedDoc struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func TestCacheHelperGetSet(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	doc := cachedDoc{Name: "INSO", Version: 3}
	if err := helper.Set(ctx, "name:INSO", doc, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got cachedDoc
	if err := helper.Get(ctx, "name:INSO", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != doc {
		t.Errorf("Get() = %+v, want %+v", got, doc)
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	helper, _ := newTestCache(t)

	var got cachedDoc
	if err := helper.Get(context.Background(), "name:missing", &got); err != ErrCacheNotFound {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperKeyPrefix(t *testing.T) {
	helper, mr := newTestCache(t)

	if err := helper.Set(context.Background(), "name:INSO", cachedDoc{Name: "INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("degree:name:INSO") {
		t.Error("stored key is missing the prefix")
	}
}

func TestCacheHelperTTLExpiry(t *testing.T) {
	helper, mr := newTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "name:INSO", cachedDoc{Name: "INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var got cachedDoc
	if err := helper.Get(ctx, "name:INSO", &got); err != ErrCacheNotFound {
		t.Errorf("Get() after expiry error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"name:INSO", "name:ICOM", "name:ICIV"} {
		if err := helper.Set(ctx, key, cachedDoc{Name: key}, time.Minute); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	if err := helper.Delete(ctx, "name:INSO", "name:ICOM"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got cachedDoc
	if err := helper.Get(ctx, "name:INSO", &got); err != ErrCacheNotFound {
		t.Errorf("deleted key still readable: %v", err)
	}
	if err := helper.Get(ctx, "name:ICIV", &got); err != nil {
		t.Errorf("untouched key lost: %v", err)
	}
}

func TestCacheHelperExists(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := helper.Exists(ctx, "name:INSO")
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v, want false, nil", ok, err)
	}

	if err := helper.Set(ctx, "name:INSO", cachedDoc{}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ok, err = helper.Exists(ctx, "name:INSO")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "list:page1", []string{"INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := helper.Set(ctx, "list:page2", []string{"ICOM"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := helper.Set(ctx, "name:INSO", cachedDoc{Name: "INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	var list []string
	if err := helper.Get(ctx, "list:page1", &list); err != ErrCacheNotFound {
		t.Errorf("list:page1 still cached: %v", err)
	}
	var got cachedDoc
	if err := helper.Get(ctx, "name:INSO", &got); err != nil {
		t.Errorf("name key lost to pattern invalidation: %v", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "degree:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", cachedDoc{}, time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v, want nil", err)
	}
	var got cachedDoc
	if err := helper.Get(ctx, "k", &got); err != ErrCacheNotAvailable {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() with nil client error = %v, want nil", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedDoc{Name: "INSO", Version: 1}, nil
	}

	var got cachedDoc
	if err := helper.CacheOrExecute(ctx, "name:INSO", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if got.Name != "INSO" {
		t.Errorf("got = %+v", got)
	}

	// The write-back runs on a goroutine; give it a moment before checking
	// the second read hits the cache.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ok, _ := helper.Exists(ctx, "name:INSO"); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var second cachedDoc
	if err := helper.CacheOrExecute(ctx, "name:INSO", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() second call error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls after cached read = %d, want 1", calls)
	}
}

func TestCacheManagerInvalidateDegree(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Degree.Set(ctx, "name:INSO", cachedDoc{Name: "INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cm.Degree.Set(ctx, "list:page1", []string{"INSO"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cm.InvalidateDegree(ctx, "INSO"); err != nil {
		t.Fatalf("InvalidateDegree() error = %v", err)
	}

	var got cachedDoc
	if err := cm.Degree.Get(ctx, "name:INSO", &got); err != ErrCacheNotFound {
		t.Errorf("degree entry still cached: %v", err)
	}
	var list []string
	if err := cm.Degree.Get(ctx, "list:page1", &list); err != ErrCacheNotFound {
		t.Errorf("degree list still cached: %v", err)
	}
}
