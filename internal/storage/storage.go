// Package storage is the small key-value slot the session lives in.
package storage

import "sync"

// Storage keeps string values under fixed keys. Put writes all given pairs
// atomically, Delete removes all given keys atomically.
type Storage interface {
	Get(key string) (string, bool, error)
	Put(values map[string]string) error
	Delete(keys ...string) error
}

// Memory is a Storage that lives as long as the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Put(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
