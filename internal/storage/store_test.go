package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string](0)

	require.NoError(t, store.Put(ctx, "k1", "v1"))
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore[string](0)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	store := NewMemoryStore[string](0)
	assert.Error(t, store.Put(context.Background(), "", "v"))
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[int](10 * time.Millisecond)

	require.NoError(t, store.Put(ctx, "k", 42))
	time.Sleep(25 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[int](10 * time.Millisecond)

	require.NoError(t, store.Put(ctx, "old", 1))
	time.Sleep(25 * time.Millisecond)
	require.NoError(t, store.Put(ctx, "fresh", 2))

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string](0)

	require.NoError(t, store.Put(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLCacheBasics(t *testing.T) {
	cache := NewTTLCache[string](8, time.Minute)

	cache.Put("a", "alpha")
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())
}

func TestTTLCacheExpiry(t *testing.T) {
	cache := NewTTLCache[string](8, 10*time.Millisecond)

	cache.Put("a", "alpha")
	time.Sleep(25 * time.Millisecond)

	_, ok := cache.Get("a")
	assert.False(t, ok, "expired entries must not be served")
}

func TestTTLCacheEvict(t *testing.T) {
	cache := NewTTLCache[string](8, time.Minute)

	cache.Put("a", "alpha")
	cache.Evict("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheSweep(t *testing.T) {
	cache := NewTTLCache[int](8, 10*time.Millisecond)

	cache.Put("old", 1)
	time.Sleep(25 * time.Millisecond)
	cache.Put("fresh", 2)

	removed := cache.Sweep()
	assert.Equal(t, 1, removed)

	_, ok := cache.Get("fresh")
	assert.True(t, ok)
}
