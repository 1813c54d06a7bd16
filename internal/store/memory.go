package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps records in process memory. Used by tests and the
// "memory" backend.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Key]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key]json.RawMessage)}
}

func (m *MemoryStore) Read(_ context.Context, key Key) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *MemoryStore) Write(_ context.Context, key Key, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
