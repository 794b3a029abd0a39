package clientstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.Run(context.Background(), sqlDB, config.DBDriverSQLite, "up"))
	return conn
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLStore(ctx, newSQLDB(t), "test", time.Second, nil)
	require.NoError(t, err)

	_, err = store.Get(ctx, KeyCart)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	value, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	conn := newSQLDB(t)
	shopA, err := NewSQLStore(ctx, conn, "a", time.Second, nil)
	require.NoError(t, err)
	shopB, err := NewSQLStore(ctx, conn, "b", time.Second, nil)
	require.NoError(t, err)

	require.NoError(t, shopA.Set(ctx, KeyAuthRole, []byte(`"admin"`)))
	_, err = shopB.Get(ctx, KeyAuthRole)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLStorePollReportsOnlyExternalWrites(t *testing.T) {
	ctx := context.Background()
	conn := newSQLDB(t)

	first, err := NewSQLStore(ctx, conn, "shared", time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[]`)))

	second, err := NewSQLStore(ctx, conn, "shared", time.Second, nil)
	require.NoError(t, err)

	var firstSeen, secondSeen []Key
	first.OnExternalChange(KeyCart, func(_ context.Context, key Key) { firstSeen = append(firstSeen, key) })
	second.OnExternalChange(KeyCart, func(_ context.Context, key Key) { secondSeen = append(secondSeen, key) })

	// Baseline taken at construction: nothing has changed yet for second.
	require.NoError(t, second.Poll(ctx))
	assert.Empty(t, secondSeen)

	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[{"id":"x"}]`)))
	require.NoError(t, first.Poll(ctx))
	assert.Empty(t, firstSeen, "own writes are not external")

	require.NoError(t, second.Poll(ctx))
	assert.Equal(t, []Key{KeyCart}, secondSeen)

	require.NoError(t, second.Delete(ctx, KeyCart))
	require.NoError(t, first.Poll(ctx))
	assert.Equal(t, []Key{KeyCart}, firstSeen)

	require.NoError(t, second.Poll(ctx))
	assert.Len(t, secondSeen, 1)
}

func TestSQLStoreRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store, err := NewSQLStore(ctx, newSQLDB(t), "run", 10*time.Millisecond, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewSQLStoreValidatesInput(t *testing.T) {
	_, err := NewSQLStore(context.Background(), nil, "x", 0, nil)
	assert.Error(t, err)
	_, err = NewSQLStore(context.Background(), newSQLDB(t), " ", 0, nil)
	assert.Error(t, err)
}
