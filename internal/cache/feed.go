// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// feed.go provides a Valkey-backed cache for the derived curation feeds
// (latest, trending, featured, home). Entries are short-lived and the
// gateway drops them all after every committed mutation, so the cache only
// ever lags the durable store, never leads it.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// feedKeyPrefix is the Valkey key prefix for cached feed payloads.
	feedKeyPrefix = "feed:"

	// DefaultFeedTTL bounds staleness when an invalidation is missed.
	DefaultFeedTTL = 2 * time.Minute
)

// FeedCache stores serialized derived-feed responses in Valkey.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a feed cache backed by the given Valkey client.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl == 0 {
		ttl = DefaultFeedTTL
	}
	return &FeedCache{client: client, ttl: ttl}
}

// Get retrieves a cached feed payload. Returns false on miss or error;
// cache trouble must never fail a read path.
func (fc *FeedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := fc.client.Get(ctx, feedKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("feed cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("feed cache hit", "key", key)
	return val, true
}

// Set stores a serialized feed payload with the configured TTL.
func (fc *FeedCache) Set(ctx context.Context, key string, payload []byte) {
	if err := fc.client.Set(ctx, feedKeyPrefix+key, payload, fc.ttl).Err(); err != nil {
		slog.Warn("feed cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached feed by scanning for the prefix.
// Called by the curation gateway after each committed mutation: any pin,
// promotion, or cascade can change any derived view, so they all go.
func (fc *FeedCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := fc.client.Scan(ctx, cursor, feedKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("feed cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("feed cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("feed cache invalidated", "deleted", deleted)
	}
}

// LatestKey returns the cache key for the latest-excluding-slots feed.
func LatestKey(limit int) string {
	return fmt.Sprintf("latest:%d", limit)
}

// TrendingKey returns the cache key for a trending page.
func TrendingKey(page, pageSize int) string {
	return fmt.Sprintf("trending:%d:%d", page, pageSize)
}

// FeaturedKey returns the cache key for the featured feed.
func FeaturedKey(limit int) string {
	return fmt.Sprintf("featured:%d", limit)
}

// HomeKey returns the cache key for the combined homepage payload.
func HomeKey() string {
	return "home"
}
