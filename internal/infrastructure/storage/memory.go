package storage

import (
	"context"
	"sync"
)

// Memory is a KV held entirely in process memory. Used in tests and as the
// fallback when no storage directory is configured.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(doc))
	copy(out, doc)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	doc := make([]byte, len(value))
	copy(doc, value)

	m.mu.Lock()
	m.docs[key] = doc
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}
