// feed_test.go contains integration tests for the Valkey-backed feed
// cache. Tests are skipped if Valkey is not available.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testClient returns a Valkey client on DB 15, skipping if unreachable.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, feedKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestConnectValkeyShortReadTimeouts(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	defer client.Close()

	// A slow cache must surface as a miss, not a stalled public read.
	opts := client.Options()
	if opts.ReadTimeout != 500*time.Millisecond {
		t.Errorf("read timeout = %s, want 500ms", opts.ReadTimeout)
	}
	if opts.WriteTimeout != 500*time.Millisecond {
		t.Errorf("write timeout = %s, want 500ms", opts.WriteTimeout)
	}
}

func TestFeedCacheRoundTrip(t *testing.T) {
	fc := NewFeedCache(testClient(t), time.Minute)
	ctx := context.Background()

	if _, ok := fc.Get(ctx, LatestKey(10)); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	payload := []byte(`[{"id":"test"}]`)
	fc.Set(ctx, LatestKey(10), payload)

	got, ok := fc.Get(ctx, LatestKey(10))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestFeedCacheInvalidateAll(t *testing.T) {
	fc := NewFeedCache(testClient(t), time.Minute)
	ctx := context.Background()

	fc.Set(ctx, LatestKey(10), []byte("a"))
	fc.Set(ctx, TrendingKey(1, 20), []byte("b"))
	fc.Set(ctx, FeaturedKey(3), []byte("c"))
	fc.Set(ctx, HomeKey(), []byte("d"))

	fc.InvalidateAll(ctx)

	for _, key := range []string{LatestKey(10), TrendingKey(1, 20), FeaturedKey(3), HomeKey()} {
		if _, ok := fc.Get(ctx, key); ok {
			t.Errorf("key %q survived invalidation", key)
		}
	}
}

func TestFeedCacheTTLExpiry(t *testing.T) {
	fc := NewFeedCache(testClient(t), 50*time.Millisecond)
	ctx := context.Background()

	fc.Set(ctx, HomeKey(), []byte("soon gone"))
	time.Sleep(80 * time.Millisecond)

	if _, ok := fc.Get(ctx, HomeKey()); ok {
		t.Error("entry survived past TTL")
	}
}

func TestKeyHelpers(t *testing.T) {
	if LatestKey(10) != "latest:10" {
		t.Errorf("LatestKey = %q", LatestKey(10))
	}
	if TrendingKey(2, 25) != "trending:2:25" {
		t.Errorf("TrendingKey = %q", TrendingKey(2, 25))
	}
	if FeaturedKey(3) != "featured:3" {
		t.Errorf("FeaturedKey = %q", FeaturedKey(3))
	}
	if HomeKey() != "home" {
		t.Errorf("HomeKey = %q", HomeKey())
	}
}
