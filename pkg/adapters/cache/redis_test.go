package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*RedisFaviconCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisFaviconCache(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisFaviconCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetSet(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "http://localhost:3000/"); err != nil || found {
		t.Fatalf("Get() on empty cache = found %v, err %v", found, err)
	}

	if err := c.Set(ctx, "http://localhost:3000/", "http://localhost:3000/favicon.ico", time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	ref, found, err := c.Get(ctx, "http://localhost:3000/")
	if err != nil || !found || ref != "http://localhost:3000/favicon.ico" {
		t.Errorf("Get() = %q, %v, %v", ref, found, err)
	}

	mr.FastForward(2 * time.Hour)
	if _, found, _ := c.Get(ctx, "http://localhost:3000/"); found {
		t.Error("entry should have expired")
	}
}

func TestCachedMiss(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "http://10.0.0.5/", "", 10*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	ref, found, err := c.Get(ctx, "http://10.0.0.5/")
	if err != nil || !found || ref != "" {
		t.Errorf("Get() = %q, %v, %v, want cached miss", ref, found, err)
	}
	if !mr.Exists(keyPrefix + "http://10.0.0.5/") {
		t.Error("expected prefixed key in redis")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := NewRedisFaviconCache(context.Background(), "not-a-redis-url"); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestWithClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisFaviconCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
