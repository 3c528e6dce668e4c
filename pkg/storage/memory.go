package storage

import (
	"context"
	"sync"
)

// Memory is a process-local Backend. State does not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, visitorID string, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[memoryKey(visitorID, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) Put(_ context.Context, visitorID string, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[memoryKey(visitorID, key)] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, visitorID string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryKey(visitorID, key))
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func memoryKey(visitorID string, key Key) string {
	return visitorID + "/" + string(key)
}
