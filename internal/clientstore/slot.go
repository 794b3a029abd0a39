package clientstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
)

// Slot is a typed view over one key.
type Slot[T any] struct {
	store Store
	key   Key
	logg  *logger.Logger
}

// NewSlot binds key in store to the JSON shape of T.
func NewSlot[T any](store Store, key Key, logg *logger.Logger) *Slot[T] {
	return &Slot[T]{store: store, key: key, logg: logg}
}

func (s *Slot[T]) Key() Key { return s.key }

// Load returns the stored value. Missing, unreadable or malformed data all
// report ok=false; the failure is logged and never returned.
func (s *Slot[T]) Load(ctx context.Context) (value T, ok bool) {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.warn(ctx, "client store read failed, treating slot as empty", err)
		}
		return value, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		s.warn(ctx, "client store value is malformed, treating slot as empty", err)
		var zero T
		return zero, false
	}
	return value, true
}

// Save replaces the stored value.
func (s *Slot[T]) Save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s", s.key))
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("persist %s", s.key))
	}
	return nil
}

// Clear removes the stored value.
func (s *Slot[T]) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("clear %s", s.key))
	}
	return nil
}

// OnExternalChange subscribes to writes made by other store instances.
func (s *Slot[T]) OnExternalChange(handler ChangeHandler) func() {
	return s.store.OnExternalChange(s.key, handler)
}

func (s *Slot[T]) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithStoreKey(ctx, string(s.key))
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}
