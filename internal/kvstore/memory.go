package kvstore

import "sync"

// Memory is an in-memory Store. Data is lost when the process exits; it is
// intended for tests that need to substitute the file-backed store.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

// Get implements the Store interface.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to avoid external modifications.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set implements the Store interface.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.records[key] = stored
	return nil
}

// Delete implements the Store interface.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)
