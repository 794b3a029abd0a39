package clientstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgredis "github.com/yulishop/storefront/pkg/redis"
)

func newRedisPair(t *testing.T) (*RedisStore, *RedisStore, *miniredis.Miniredis) {
	t.Helper()
	ctx := context.Background()
	mr := miniredis.RunT(t)

	open := func() *RedisStore {
		raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = raw.Close() })
		store, err := NewRedisStore(ctx, pkgredis.NewFromClient(raw, "test"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}
	return open(), open(), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _, mr := newRedisPair(t)

	_, err := store.Get(ctx, KeyPendingOrder)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Set(ctx, KeyPendingOrder, []byte(`{"commitId":"c1"}`)))
	raw, err := mr.Get("test:slot:pendingOrder")
	require.NoError(t, err)
	assert.Equal(t, `{"commitId":"c1"}`, raw)

	value, err := store.Get(ctx, KeyPendingOrder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"commitId":"c1"}`, string(value))

	require.NoError(t, store.Delete(ctx, KeyPendingOrder))
	_, err = store.Get(ctx, KeyPendingOrder)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisStoreNotifiesOtherProcesses(t *testing.T) {
	ctx := context.Background()
	writer, reader, _ := newRedisPair(t)

	writerSeen := make(chan Key, 4)
	readerSeen := make(chan Key, 4)
	writer.OnExternalChange(KeyCart, func(_ context.Context, key Key) { writerSeen <- key })
	reader.OnExternalChange(KeyCart, func(_ context.Context, key Key) { readerSeen <- key })

	require.NoError(t, writer.Set(ctx, KeyCart, []byte(`[]`)))

	select {
	case key := <-readerSeen:
		assert.Equal(t, KeyCart, key)
	case <-time.After(3 * time.Second):
		t.Fatal("reader was not notified of the external change")
	}

	// The writer's own announcement round-trips too, and must be ignored.
	require.NoError(t, reader.Delete(ctx, KeyCart))
	select {
	case key := <-writerSeen:
		assert.Equal(t, KeyCart, key)
	case <-time.After(3 * time.Second):
		t.Fatal("writer was not notified of the reader's delete")
	}
	select {
	case key := <-writerSeen:
		t.Fatalf("unexpected extra notification for %s", key)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisStoreCloseIsIdempotent(t *testing.T) {
	store, _, _ := newRedisPair(t)
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
