// Package cache provides the in-memory page and resource caches.
//
// Stores never evict unless built with a capacity, in which case the least
// recently used entry is dropped. Put overwrites silently.
package cache

import "sync"

// Store is a keyed cache with last-write-wins puts.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Delete(key K)
	Len() int
	Clear()
}

// New returns an unbounded Map when capacity <= 0 and an LRU otherwise.
func New[K comparable, V any](capacity int) Store[K, V] {
	if capacity <= 0 {
		return NewMap[K, V]()
	}
	return NewLRU[K, V](capacity)
}

// Map is an unbounded store. Entries live for the whole session.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{items: make(map[K]V)}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Map[K, V]) Put(key K, value V) {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
}

func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	m.items = make(map[K]V)
	m.mu.Unlock()
}
