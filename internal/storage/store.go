package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned when a key has no live entry.
var ErrNotFound = fmt.Errorf("storage: key not found")

// Store is a keyed store with explicit TTL and sweep semantics. Session
// and personalization state live behind this interface so capacity and
// expiry are enforced mechanically rather than by caller discipline.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Put(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
	// Sweep removes expired entries and returns how many were dropped.
	Sweep(ctx context.Context) (int, error)
	Len() int
}

type memoryEntry[T any] struct {
	value     T
	updatedAt time.Time
}

// MemoryStore is the in-process Store implementation. The mutex guards
// the map only; values for one key are single-writer by contract.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
}

// NewMemoryStore creates a memory store. A zero ttl disables expiry.
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
	}
}

func (m *MemoryStore[T]) Get(ctx context.Context, key string) (T, error) {
	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	var zero T
	if !exists {
		return zero, ErrNotFound
	}
	if m.expired(entry) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return zero, ErrNotFound
	}
	return entry.value, nil
}

func (m *MemoryStore[T]) Put(ctx context.Context, key string, value T) error {
	if key == "" {
		return fmt.Errorf("storage: key cannot be empty")
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry[T]{value: value, updatedAt: time.Now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore[T]) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if m.expired(entry) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore[T]) expired(entry memoryEntry[T]) bool {
	return m.ttl > 0 && time.Since(entry.updatedAt) > m.ttl
}
