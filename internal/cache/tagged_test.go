package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*TaggedCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTaggedCache(client, slog.New(slog.DiscardHandler), Config{}), mr
}

func TestSetGetInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), 5*time.Second, []string{"list"})
	assert.Equal(t, []byte("v"), cache.Get(ctx, "k"))

	removed := cache.InvalidateByTags(ctx, "list")
	assert.Equal(t, 1, removed)
	assert.Nil(t, cache.Get(ctx, "k"))
}

func TestExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), 5*time.Second, nil)
	mr.FastForward(6 * time.Second)
	assert.Nil(t, cache.Get(ctx, "k"))
}

func TestInvalidateMultipleTags(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "list:1", []byte("a"), time.Minute, []string{"list"})
	cache.Set(ctx, "list:2", []byte("b"), time.Minute, []string{"list"})
	cache.Set(ctx, "rec:7", []byte("c"), time.Minute, []string{"list", "record:7"})
	cache.Set(ctx, "other", []byte("d"), time.Minute, []string{"record:8"})

	removed := cache.InvalidateByTags(ctx, "list", "record:7")
	assert.Equal(t, 3, removed)
	assert.Nil(t, cache.Get(ctx, "list:1"))
	assert.Nil(t, cache.Get(ctx, "rec:7"))
	assert.Equal(t, []byte("d"), cache.Get(ctx, "other"))
}

func TestDegradesToLocalStore(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// Take the backend down: operations keep working via the in-process map.
	mr.Close()

	cache.Set(ctx, "k", []byte("v"), time.Minute, []string{"list"})
	assert.Equal(t, []byte("v"), cache.Get(ctx, "k"))

	removed := cache.InvalidateByTags(ctx, "list")
	assert.Equal(t, 1, removed)
	assert.Nil(t, cache.Get(ctx, "k"))
}

func TestNilClientUsesLocalStore(t *testing.T) {
	cache := NewTaggedCache(nil, slog.New(slog.DiscardHandler), Config{})
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), time.Minute, []string{"list"})
	assert.Equal(t, []byte("v"), cache.Get(ctx, "k"))
	assert.Equal(t, 1, cache.InvalidateByTags(ctx, "list"))
}

func TestJSONRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Items []int64 `json:"items"`
	}
	cache.SetJSON(ctx, "k", payload{Items: []int64{3, 2, 1}}, time.Minute, []string{"list"})

	var out payload
	require.True(t, cache.GetJSON(ctx, "k", &out))
	assert.Equal(t, []int64{3, 2, 1}, out.Items)

	assert.False(t, cache.GetJSON(ctx, "missing", &out))
}
