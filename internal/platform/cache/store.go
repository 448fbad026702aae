// Package cache holds the read-through caches used in front of slow
// dependencies.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// BytesStore caches encoded payloads. Store[[]byte] and RedisStore satisfy it.
type BytesStore interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error)
}

type item[V any] struct {
	value   V
	expires time.Time
}

// Store is an in-process read-through cache. Concurrent misses on a key
// share one loader call; failed loads are not cached. A non-positive ttl
// keeps entries forever.
type Store[V any] struct {
	ttl    time.Duration
	now    func() time.Time
	flight singleflight.Group

	mu    sync.Mutex
	items map[string]item[V]
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{ttl: ttl, now: time.Now, items: make(map[string]item[V])}
}

func (s *Store[V]) lookup(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if ok && s.ttl > 0 && !s.now().Before(it.expires) {
		delete(s.items, key)
		ok = false
	}
	return it.value, ok
}

func (s *Store[V]) store(key string, value V) {
	s.mu.Lock()
	s.items[key] = item[V]{value: value, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

// Forget drops key so the next read reloads it.
func (s *Store[V]) Forget(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.lookup(key); ok {
		return v, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.store(key, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return out.(V), nil
}
