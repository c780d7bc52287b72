package cart

import (
	"sync"
)

// Storage is the key-value port carts are persisted through. Get returns
// nil data for an unknown key.
type Storage interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage returns a non-durable Storage used in tests.
func NewMemoryStorage() Storage {
	return &memoryStorage{items: make(map[string][]byte)}
}

func (m *memoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *memoryStorage) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.items[key] = cp
	return nil
}

func (m *memoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}
