// Package store provides the keyed project and deployment stores. The
// pipeline itself is stateless; the orchestration layer injects a Store to
// own identity and persistence. The in-memory implementation is process-wide
// with no durability guarantee and can be swapped for a durable store
// without touching the pipeline.
package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no value exists under a key.
var ErrNotFound = errors.New("not found")

// Store is a keyed value store. Implementations must support safe concurrent
// access per key; no cross-key transactions are provided.
type Store[T any] interface {
	Get(key string) (T, error)
	Put(key string, value T)
	Update(key string, fn func(T) T) error
}

// Memory is the in-memory Store implementation.
type Memory[T any] struct {
	mu     sync.RWMutex
	values map[string]T
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{values: make(map[string]T)}
}

// Get returns the value under key, or ErrNotFound.
func (m *Memory[T]) Get(key string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return value, nil
}

// Put stores value under key, replacing any existing value.
func (m *Memory[T]) Put(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Update applies fn to the value under key and stores the result. The whole
// read-modify-write runs under the lock.
func (m *Memory[T]) Update(key string, fn func(T) T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return ErrNotFound
	}
	m.values[key] = fn(value)
	return nil
}

// Keys returns every stored key. Order is unspecified.
func (m *Memory[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	return keys
}
