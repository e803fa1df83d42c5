package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalStoreExpiryAtRead(t *testing.T) {
	store := newLocalStore(0, 0)
	current := time.Now()
	store.now = func() time.Time { return current }

	store.set("k", []byte("v"), 5*time.Second, nil)

	value, ok := store.get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	current = current.Add(6 * time.Second)
	_, ok = store.get("k")
	assert.False(t, ok)
	// Expired entries are evicted on read, not just hidden.
	assert.Equal(t, 0, store.len())
}

func TestLocalStoreTagIndexCleanup(t *testing.T) {
	store := newLocalStore(0, 0)

	store.set("a", []byte("1"), time.Minute, []string{"list"})
	store.set("b", []byte("2"), time.Minute, []string{"list", "record:7"})

	removed := store.deleteByTags([]string{"list"})
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, store.len())
	assert.Empty(t, store.byTag)
}

func TestLocalStoreBoundedGrowth(t *testing.T) {
	store := newLocalStore(100, 75)
	current := time.Now()
	store.now = func() time.Time { return current }

	for i := 0; i < 101; i++ {
		current = current.Add(time.Millisecond)
		store.set(fmt.Sprintf("key-%03d", i), []byte("v"), time.Hour, nil)
	}

	assert.Equal(t, 75, store.len())
	// The oldest entries were evicted, the newest survive.
	_, ok := store.get("key-000")
	assert.False(t, ok)
	_, ok = store.get("key-100")
	assert.True(t, ok)
}

func TestLocalStoreOverwriteReindexesTags(t *testing.T) {
	store := newLocalStore(0, 0)

	store.set("k", []byte("1"), time.Minute, []string{"record:1"})
	store.set("k", []byte("2"), time.Minute, []string{"record:2"})

	assert.Equal(t, 0, store.deleteByTags([]string{"record:1"}))
	assert.Equal(t, 1, store.deleteByTags([]string{"record:2"}))
}
