package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store is an in-memory key/value cache without expiry. Concurrent loads of
// the same key are collapsed into one call.
type Store[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]V
	gen    map[K]uint64
	flight singleflight.Group
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		items: make(map[K]V),
		gen:   make(map[K]uint64),
	}
}

// Get returns the value for key, if present.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores a value.
func (s *Store[K, V]) Set(key K, v V) {
	s.mu.Lock()
	s.items[key] = v
	s.mu.Unlock()
}

// Delete removes key. A load already running for key will not store its result.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	delete(s.items, key)
	s.gen[key]++
	s.mu.Unlock()
	s.flight.Forget(flightKey(key))
}

// DeleteFunc removes every key for which match returns true.
func (s *Store[K, V]) DeleteFunc(match func(K) bool) {
	s.mu.Lock()
	var removed []K
	for k := range s.items {
		if match(k) {
			delete(s.items, k)
			s.gen[k]++
			removed = append(removed, k)
		}
	}
	s.mu.Unlock()
	for _, k := range removed {
		s.flight.Forget(flightKey(k))
	}
}

// Len returns the number of cached values.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// GetOrLoad returns the cached value or computes it with load. Only one load
// per key runs at a time; other callers wait for its result. Failed loads are
// not cached. The load runs detached from the caller's cancellation so one
// caller giving up does not fail the others.
func (s *Store[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	s.mu.RLock()
	gen := s.gen[key]
	s.mu.RUnlock()

	ch := s.flight.DoChan(flightKey(key), func() (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen[key] == gen {
			s.items[key] = v
		}
		s.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%#v", key)
}
