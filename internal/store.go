package internal

import "sync"

// KeyValuePair represents one stored entry
type KeyValuePair struct {
	Key   string
	Value string
}

// Store is a scoped key-value store holding at most one pending message
// per key. Implementations may fail (quota, locked file, missing
// directory); wrap them in a SafeStore so storage problems degrade to
// "no persistence" instead of breaking delivery.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	List(prefix string) ([]KeyValuePair, error)
}

// MemoryStore is a process-scoped Store. It is the ephemeral session
// store: contents vanish when the process exits.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) List(prefix string) ([]KeyValuePair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pairs []KeyValuePair
	for key, value := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			pairs = append(pairs, KeyValuePair{Key: key, Value: value})
		}
	}
	return pairs, nil
}

// SafeStore wraps a Store so every operation is fail-soft: errors are
// logged and swallowed, reads fail to "absent". Losing a pending-message
// convenience must never crash the chat.
type SafeStore struct {
	backend Store
}

// NewSafeStore wraps backend in fail-soft semantics
func NewSafeStore(backend Store) *SafeStore {
	return &SafeStore{backend: backend}
}

// Get returns the stored value, or the empty string when absent or on
// any backend failure
func (s *SafeStore) Get(key string) string {
	value, err := s.backend.Get(key)
	if err != nil {
		LogWarn("Pending store read failed for %s: %v", key, err)
		return ""
	}
	return value
}

// Set writes value under key, overwriting any previous entry
func (s *SafeStore) Set(key, value string) {
	if err := s.backend.Set(key, value); err != nil {
		LogWarn("Pending store write failed for %s: %v", key, err)
	}
}

// Remove deletes the entry under key
func (s *SafeStore) Remove(key string) {
	if err := s.backend.Remove(key); err != nil {
		LogWarn("Pending store remove failed for %s: %v", key, err)
	}
}

// List returns all entries whose key starts with prefix, or nil on
// backend failure
func (s *SafeStore) List(prefix string) []KeyValuePair {
	pairs, err := s.backend.List(prefix)
	if err != nil {
		LogWarn("Pending store list failed for %s: %v", prefix, err)
		return nil
	}
	return pairs
}
