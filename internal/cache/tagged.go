// Package cache implements a get/set cache with TTL and tag-based bulk
// invalidation. The Redis backend is tried first; when it is unreachable the
// cache transparently degrades to an in-process map with identical
// semantics, so callers never see a backend failure. Cross-process coherency
// is not guaranteed while degraded.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagKeyPrefix = "tag:"

// Config tunes the in-process fallback store.
type Config struct {
	MaxLocalEntries  int
	LocalEvictTarget int
}

// TaggedCache is the cache manager. Construct one instance and inject it;
// it holds no package-level state.
type TaggedCache struct {
	client *redis.Client
	local  *localStore
	logger *slog.Logger
}

// NewTaggedCache constructs the cache. client may be nil, in which case
// every operation uses the in-process store.
func NewTaggedCache(client *redis.Client, logger *slog.Logger, cfg Config) *TaggedCache {
	return &TaggedCache{
		client: client,
		local:  newLocalStore(cfg.MaxLocalEntries, cfg.LocalEvictTarget),
		logger: logger,
	}
}

// Set stores value under key with the given TTL and indexes the key under
// each tag. Backend failures are absorbed: the entry lands in the in-process
// store instead and the degradation is logged.
func (c *TaggedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) {
	if c.client != nil {
		pipe := c.client.TxPipeline()
		pipe.Set(ctx, key, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKeyPrefix+tag, key)
		}
		if _, err := pipe.Exec(ctx); err == nil {
			return
		} else {
			c.degraded("set", err)
		}
	}
	c.local.set(key, value, ttl, tags)
}

// Get returns the cached value, or nil when the key is absent or expired.
func (c *TaggedCache) Get(ctx context.Context, key string) []byte {
	if c.client != nil {
		value, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			recordHit("redis")
			return value
		case errors.Is(err, redis.Nil):
			recordMiss("redis")
			return nil
		default:
			c.degraded("get", err)
		}
	}
	if value, ok := c.local.get(key); ok {
		recordHit("local")
		return value
	}
	recordMiss("local")
	return nil
}

// InvalidateByTags deletes every key indexed under the given tags from both
// the value store and the tag index, returning the number of keys removed.
// Every mutation affecting the record collection must call this before its
// response returns.
func (c *TaggedCache) InvalidateByTags(ctx context.Context, tags ...string) int {
	removed := 0
	if c.client != nil {
		for _, tag := range tags {
			keys, err := c.client.SMembers(ctx, tagKeyPrefix+tag).Result()
			if err != nil {
				c.degraded("invalidate", err)
				break
			}
			if len(keys) > 0 {
				n, err := c.client.Del(ctx, keys...).Result()
				if err != nil {
					c.degraded("invalidate", err)
					break
				}
				removed += int(n)
			}
			if err := c.client.Del(ctx, tagKeyPrefix+tag).Err(); err != nil {
				c.degraded("invalidate", err)
				break
			}
		}
	}
	// The local store is always swept so a degraded period cannot leave
	// stale entries behind once the backend recovers.
	removed += c.local.deleteByTags(tags)
	return removed
}

// SetJSON marshals value and stores it.
func (c *TaggedCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration, tags []string) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache: marshal", slog.String("key", key), slog.Any("error", err))
		return
	}
	c.Set(ctx, key, data, ttl, tags)
}

// GetJSON loads a cached value into dest, reporting whether it was present.
func (c *TaggedCache) GetJSON(ctx context.Context, key string, dest any) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache: unmarshal", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *TaggedCache) degraded(op string, err error) {
	recordFallback()
	c.logger.Warn("cache: backend unavailable, using in-process store",
		slog.String("op", op), slog.Any("error", err))
}
