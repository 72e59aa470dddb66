package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestStore_AsideFetchesOnceThenHits(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: 1, Name: "alice"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, store.Aside(ctx, IdentityKey("alice"), &first, time.Minute, fetch(&first)))
	assert.Equal(t, "alice", first.Name)
	assert.True(t, mr.Exists("identity:alice"))

	var second cachedThing
	require.NoError(t, store.Aside(ctx, IdentityKey("alice"), &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	var third cachedThing
	require.NoError(t, store.Aside(ctx, IdentityKey("alice"), &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls, "expired entries are refetched")
}

func TestStore_AsideDoesNotCacheErrors(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	fetchErr := errors.New("not found")

	var dest cachedThing
	err := store.Aside(context.Background(), PostKey(9), &dest, time.Minute, func() error { return fetchErr })
	assert.ErrorIs(t, err, fetchErr)
	assert.False(t, mr.Exists("post:9"))
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, PostKey(1), cachedThing{ID: 1}, time.Minute))
	require.NoError(t, store.SetJSON(ctx, PostKey(2), cachedThing{ID: 2}, time.Minute))
	store.Invalidate(ctx, PostKey(1), PostKey(2))

	assert.False(t, mr.Exists("post:1"))
	assert.False(t, mr.Exists("post:2"))
}

func TestStore_NilClientIsNoop(t *testing.T) {
	t.Parallel()
	store := New(nil)
	ctx := context.Background()

	assert.False(t, store.Enabled())
	found, err := store.GetJSON(ctx, "k", &cachedThing{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.SetJSON(ctx, "k", cachedThing{}, time.Minute))
	store.Invalidate(ctx, "k")

	calls := 0
	var dest cachedThing
	require.NoError(t, store.Aside(ctx, "k", &dest, time.Minute, func() error { calls++; return nil }))
	require.NoError(t, store.Aside(ctx, "k", &dest, time.Minute, func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)

	var nilStore *Store
	assert.False(t, nilStore.Enabled())
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "identity:alice", IdentityKey("alice"))
	assert.Equal(t, "post:42", PostKey(42))
	assert.Equal(t, "post", keyFamily(PostKey(42)))
	assert.Equal(t, "bare", keyFamily("bare"))
}
