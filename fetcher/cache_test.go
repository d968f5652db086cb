package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFSCacheRoundTrip(t *testing.T) {
	cache, err := NewFSCache(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	ctx := context.Background()

	if _, ok, _ := cache.Get(ctx, "AAPL_2025-06-01_2025-06-16_0"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	if err := cache.Set(ctx, "AAPL_2025-06-01_2025-06-16_0", []byte("<html/>")); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}

	data, ok, err := cache.Get(ctx, "AAPL_2025-06-01_2025-06-16_0")
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != "<html/>" {
		t.Errorf("Expected cached body, got %q", data)
	}
}

func TestFSCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewFSCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	ctx := context.Background()

	if err := cache.Set(ctx, "AAPL_2025-06-01_2025-06-16_0", []byte("stale")); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}

	old := time.Now().Add(-2 * time.Minute)
	path := filepath.Join(dir, "AAPL_2025-06-01_2025-06-16_0.html")
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Failed to age entry: %v", err)
	}

	if _, ok, _ := cache.Get(ctx, "AAPL_2025-06-01_2025-06-16_0"); ok {
		t.Error("Expected stale entry to behave like a miss")
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("Expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "k", []byte("body")); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}
	data, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || string(data) != "body" {
		t.Fatalf("Expected hit with body, got ok=%v err=%v data=%q", ok, err, data)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Error("Expected entry to expire after TTL")
	}
}
