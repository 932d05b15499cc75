package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisCache(client, zerolog.Nop())
}

func TestRedisCache_SetGet(t *testing.T) {
	_, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "search:key", []byte(`["a","b"]`), time.Hour)

	val, ok := c.Get(ctx, "search:key")
	if !ok {
		t.Fatal("expected value to be found")
	}
	if string(val) != `["a","b"]` {
		t.Errorf("got %q", val)
	}
}

func TestRedisCache_GetMissing(t *testing.T) {
	_, c := setupMiniRedis(t)

	if _, ok := c.Get(context.Background(), "nonexistent"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "search:key", []byte("value"), 24*time.Hour)

	if _, ok := c.Get(ctx, "search:key"); !ok {
		t.Fatal("expected hit before expiry")
	}

	mr.FastForward(25 * time.Hour)

	if _, ok := c.Get(ctx, "search:key"); ok {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestRedisCache_Overwrite(t *testing.T) {
	_, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("old"), time.Hour)
	c.Set(ctx, "k", []byte("new"), time.Hour)

	val, ok := c.Get(ctx, "k")
	if !ok || string(val) != "new" {
		t.Errorf("got %q, %v; want \"new\", true", val, ok)
	}
}

func TestSearchKey(t *testing.T) {
	if got := SearchKey("  NewJeans OMG  ", 10); got != "yt-search:newjeans omg:10" {
		t.Errorf("SearchKey = %q", got)
	}
	if SearchKey("a", 10) == SearchKey("a", 25) {
		t.Error("different limits must produce different keys")
	}
}
