// Package clientstore is the durable key-value store the storefront keeps its
// client-side state in. Values are JSON documents addressed by a small fixed
// set of logical keys. Writers do not lock; the last write wins, and other
// processes sharing the same backing store learn about changes through
// OnExternalChange.
package clientstore

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Key names one logical slot.
type Key string

const (
	KeyCart            Key = "cart"
	KeyPendingOrder    Key = "pendingOrder"
	KeyCustomerProfile Key = "customerProfile"
	KeyAuthToken       Key = "authToken"
	KeyAuthRole        Key = "authRole"
)

// Keys lists every slot the storefront uses.
var Keys = []Key{KeyCart, KeyPendingOrder, KeyCustomerProfile, KeyAuthToken, KeyAuthRole}

func (k Key) String() string { return string(k) }

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("clientstore: key not found")

// ChangeHandler is invoked when another writer changed key.
type ChangeHandler func(ctx context.Context, key Key)

// Store is implemented by every backend.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	// OnExternalChange registers handler for writes made by someone else.
	// Writes made through the same Store value never trigger it.
	OnExternalChange(key Key, handler ChangeHandler) (cancel func())
}

type observers struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Key]map[int]ChangeHandler
}

func (o *observers) add(key Key, handler ChangeHandler) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.handlers == nil {
		o.handlers = map[Key]map[int]ChangeHandler{}
	}
	if o.handlers[key] == nil {
		o.handlers[key] = map[int]ChangeHandler{}
	}
	id := o.nextID
	o.nextID++
	o.handlers[key][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.handlers[key], id)
		})
	}
}

// notify runs handlers in registration order outside the lock so a handler
// may read or write the store.
func (o *observers) notify(ctx context.Context, key Key) {
	o.mu.Lock()
	registered := o.handlers[key]
	ids := make([]int, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]ChangeHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, registered[id])
	}
	o.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, key)
	}
}
