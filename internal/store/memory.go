package store

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is a process-local KV used in tests and when Redis is not
// configured. TTL handling is lazy (checked on read).
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: map[string]memoryItem{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrMiss
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return "", ErrMiss
	}
	return it.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := memoryItem{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	m.items[key] = it
	return nil
}
