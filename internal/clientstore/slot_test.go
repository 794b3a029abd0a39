package clientstore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type brokenStore struct {
	getErr   error
	writeErr error
}

func (b brokenStore) Get(context.Context, Key) ([]byte, error) { return nil, b.getErr }
func (b brokenStore) Set(context.Context, Key, []byte) error { return b.writeErr }
func (b brokenStore) Delete(context.Context, Key) error { return b.writeErr }
func (b brokenStore) OnExternalChange(Key, ChangeHandler) func() { return func() {} }

func TestSlotSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot[payload](NewMemoryStore(), KeyCustomerProfile, nil)

	_, ok := slot.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, slot.Save(ctx, payload{Name: "anna", Count: 2}))
	got, ok := slot.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "anna", Count: 2}, got)

	require.NoError(t, slot.Clear(ctx))
	_, ok = slot.Load(ctx)
	assert.False(t, ok)
}

func TestSlotToleratesMalformedData(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	store := NewMemoryStore()
	slot := NewSlot[[]payload](store, KeyCart, logg)

	for _, raw := range []string{`{not json`, `{"name":"x"}`, `null`, ``, `   `} {
		require.NoError(t, store.Set(ctx, KeyCart, []byte(raw)))
		got, ok := slot.Load(ctx)
		assert.False(t, ok, raw)
		assert.Empty(t, got, raw)
	}
	assert.Contains(t, buf.String(), "malformed")
	assert.Contains(t, buf.String(), `"store_key":"cart"`)
}

func TestSlotReadFailureIsRecovered(t *testing.T) {
	slot := NewSlot[payload](brokenStore{getErr: errors.New("disk gone")}, KeyCustomerProfile, nil)
	_, ok := slot.Load(context.Background())
	assert.False(t, ok)
}

func TestSlotWriteFailureIsDependencyError(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot[payload](brokenStore{writeErr: errors.New("quota exceeded")}, KeyPendingOrder, nil)

	err := slot.Save(ctx, payload{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	err = slot.Clear(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}
