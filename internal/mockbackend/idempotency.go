package mockbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pkgredis "github.com/yulishop/storefront/pkg/redis"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryIdempotency keeps replay records in process when no redis is
// configured. It satisfies middleware.IdempotencyStore.
type MemoryIdempotency struct {
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{now: time.Now, entries: map[string]memoryEntry{}}
}

// Get returns pkgredis.ErrNil for unknown or expired keys.
func (m *MemoryIdempotency) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, pkgredis.ErrNil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, pkgredis.ErrNil
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *MemoryIdempotency) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	payload, err := toBytes(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if entry, ok := m.entries[key]; ok && (entry.expiresAt.IsZero() || now.Before(entry.expiresAt)) {
		return false, nil
	}
	entry := memoryEntry{value: payload}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry
	return true, nil
}

func (m *MemoryIdempotency) IdempotencyKey(scope, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", scope, key)
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
