package clientstore

import (
	"context"
	"sync"
)

// MemoryHub is an in-process backing store shared by any number of tabs.
// A write through one tab notifies every other tab synchronously, which
// makes concurrent-tab scenarios deterministic in tests.
type MemoryHub struct {
	mu     sync.RWMutex
	data   map[Key][]byte
	tabs   map[int]*MemoryStore
	nextID int
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		data: map[Key][]byte{},
		tabs: map[int]*MemoryStore{},
	}
}

// NewMemoryStore returns a single tab on a private hub.
func NewMemoryStore() *MemoryStore {
	return NewMemoryHub().Tab()
}

// Tab opens a new Store view on the hub.
func (h *MemoryHub) Tab() *MemoryStore {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	tab := &MemoryStore{hub: h, id: id}
	h.tabs[id] = tab
	return tab
}

func (h *MemoryHub) write(ctx context.Context, origin int, key Key, value []byte) {
	h.mu.Lock()
	if value == nil {
		delete(h.data, key)
	} else {
		h.data[key] = append([]byte(nil), value...)
	}
	others := make([]*MemoryStore, 0, len(h.tabs))
	for id, tab := range h.tabs {
		if id != origin {
			others = append(others, tab)
		}
	}
	h.mu.Unlock()

	for _, tab := range others {
		tab.observers.notify(ctx, key)
	}
}

// MemoryStore is one tab's view of a MemoryHub.
type MemoryStore struct {
	hub       *MemoryHub
	id        int
	observers observers
}

func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	m.hub.mu.RLock()
	defer m.hub.mu.RUnlock()
	value, ok := m.hub.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	m.hub.write(ctx, m.id, key, value)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key Key) error {
	m.hub.write(ctx, m.id, key, nil)
	return nil
}

func (m *MemoryStore) OnExternalChange(key Key, handler ChangeHandler) func() {
	return m.observers.add(key, handler)
}

// Close detaches the tab from the hub.
func (m *MemoryStore) Close() error {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	delete(m.hub.tabs, m.id)
	return nil
}
