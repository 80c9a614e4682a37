// Package lru provides a bounded, concurrency-safe cache for expensive keyed
// resources such as rendered previews.
package lru

import (
	"errors"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ErrInvalidCapacity is returned by New when the capacity is not positive.
var ErrInvalidCapacity = errors.New("lru: capacity must be positive")

// Cache is a strict least-recently-used cache.
//
// Producers run outside the lock, so a slow producer never blocks readers of
// other keys. Two goroutines missing on the same cold key may both run their
// producer; whichever settles first wins and the other result is discarded.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[K, V]
	capacity int
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	l, err := simplelru.NewLRU[K, V](capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: l, capacity: capacity}, nil
}

// GetOrInsert returns the cached value for key, calling producer on a miss.
// A hit marks the entry most recently used.
func (c *Cache[K, V]) GetOrInsert(key K, producer func() V) V {
	v, _ := c.GetOrLoad(key, func() (V, error) {
		return producer(), nil
	})
	return v
}

// GetOrLoad is GetOrInsert for producers that can fail. A failed produce is
// returned to the caller and leaves the cache untouched.
func (c *Cache[K, V]) GetOrLoad(key K, producer func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := producer()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.lru.Get(key); ok {
		return existing, nil
	}
	c.lru.Add(key, v)
	return v, nil
}

// Peek returns the value for key without updating its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(key)
}

// Contains reports whether key is cached, without updating its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Remove drops key from the cache.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Cap returns the fixed capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Purge empties the cache.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
