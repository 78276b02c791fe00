// Package cache provides an in-memory TTL cache. Its single consumer is the
// advisor service, which memoizes agent answers keyed by question and
// balance fingerprint; entries are small and churn with every balance
// change, so an external store would be overkill.
package cache

import (
	"sync"
	"time"
)

type item[T any] struct {
	value   T
	expires time.Time
}

// Store is a thread-safe in-memory cache where every entry shares one TTL.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]item[T]
	ttl     time.Duration
}

// New creates a cache with the given TTL and starts its sweeper.
func New[T any](ttl time.Duration) *Store[T] {
	s := &Store[T]{
		entries: make(map[string]item[T]),
		ttl:     ttl,
	}
	go s.sweep()
	return s
}

// Get returns the value for key, or false if absent or expired. Expired
// entries are left for the sweeper; Get never writes.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.entries[key]
	if !ok || time.Now().After(it.expires) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores value under key with the configured TTL. An existing entry is
// overwritten and its clock restarted.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = item[T]{value: value, expires: time.Now().Add(s.ttl)}
}

// Delete removes key, if present.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len reports the number of entries, expired ones included until swept.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// sweep drops expired entries once per TTL period so the map does not grow
// unbounded under distinct keys.
func (s *Store[T]) sweep() {
	interval := s.ttl
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, it := range s.entries {
			if now.After(it.expires) {
				delete(s.entries, k)
			}
		}
		s.mu.Unlock()
	}
}
