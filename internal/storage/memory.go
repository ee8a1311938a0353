package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryBackend holds documents as marshaled JSON in a map. Used in tests
// and wherever persistence across restarts is not needed.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, name string, v any) error {
	m.mu.RLock()
	data, ok := m.docs[name]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", name, err)
	}
	return nil
}

func (m *MemoryBackend) Save(_ context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}
	m.mu.Lock()
	m.docs[name] = data
	m.mu.Unlock()
	return nil
}
