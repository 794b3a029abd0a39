package clientstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, KeyCart)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	value, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryHubNotifiesOtherTabsOnly(t *testing.T) {
	ctx := context.Background()
	hub := NewMemoryHub()
	first := hub.Tab()
	second := hub.Tab()

	var firstSeen, secondSeen []Key
	first.OnExternalChange(KeyCart, func(_ context.Context, key Key) { firstSeen = append(firstSeen, key) })
	cancel := second.OnExternalChange(KeyCart, func(_ context.Context, key Key) { secondSeen = append(secondSeen, key) })

	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[]`)))
	assert.Empty(t, firstSeen, "writer must not observe its own write")
	assert.Equal(t, []Key{KeyCart}, secondSeen)

	require.NoError(t, second.Delete(ctx, KeyCart))
	assert.Equal(t, []Key{KeyCart}, firstSeen)

	cancel()
	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[]`)))
	assert.Len(t, secondSeen, 1, "cancelled handler must not fire")

	require.NoError(t, first.Set(ctx, KeyPendingOrder, []byte(`{}`)))
	assert.Len(t, firstSeen, 1, "handlers are scoped to their key")
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	buf := []byte(`"a"`)
	require.NoError(t, store.Set(ctx, KeyAuthRole, buf))
	buf[1] = 'b'

	value, err := store.Get(ctx, KeyAuthRole)
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(value))
}

func TestMemoryTabClose(t *testing.T) {
	ctx := context.Background()
	hub := NewMemoryHub()
	first := hub.Tab()
	second := hub.Tab()

	calls := 0
	second.OnExternalChange(KeyCart, func(context.Context, Key) { calls++ })
	require.NoError(t, second.Close())
	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[]`)))
	assert.Zero(t, calls)
}
