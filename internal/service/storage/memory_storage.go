package storage

import (
	"sync"
	"time"
)

// MemoryStorage - universal in-memory object storage
// K - key type, V - stored object type
type MemoryStorage[K comparable, V any] struct {
	data       map[K]V
	mutex      sync.RWMutex
	lastUpdate map[K]time.Time
	now        func() time.Time
}

// NewMemoryStorage creates a new storage
func NewMemoryStorage[K comparable, V any]() *MemoryStorage[K, V] {
	return &MemoryStorage[K, V]{
		data:       make(map[K]V),
		lastUpdate: make(map[K]time.Time),
		now:        time.Now,
	}
}

// Set adds or replaces an object
func (s *MemoryStorage[K, V]) Set(key K, value V) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = value
	s.lastUpdate[key] = s.now()
}

// Get returns an object by key
func (s *MemoryStorage[K, V]) Get(key K) (V, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	return value, exists
}

// Delete removes an object by key
func (s *MemoryStorage[K, V]) Delete(key K) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[key]; !exists {
		return false
	}

	delete(s.data, key)
	delete(s.lastUpdate, key)
	return true
}

// UpdatedAt returns when key was last written
func (s *MemoryStorage[K, V]) UpdatedAt(key K) (time.Time, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, exists := s.lastUpdate[key]
	return t, exists
}

// Count returns the number of objects
func (s *MemoryStorage[K, V]) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Prune removes every object last written before cutoff and returns their keys
func (s *MemoryStorage[K, V]) Prune(cutoff time.Time) []K {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var pruned []K
	for k, t := range s.lastUpdate {
		if t.Before(cutoff) {
			delete(s.data, k)
			delete(s.lastUpdate, k)
			pruned = append(pruned, k)
		}
	}
	return pruned
}
