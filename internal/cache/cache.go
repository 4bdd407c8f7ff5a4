// Package cache is a small TTL map used to hold search sessions between a
// search and its feedback.
package cache

import (
	"sync"
	"time"
)

// Item is a cached value with its expiry
type Item[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Cache is an in-memory, mutex-guarded TTL cache
type Cache[V any] struct {
	items map[string]*Item[V]
	mutex sync.RWMutex
	now   func() time.Time
}

// New creates a new cache instance
func New[V any]() *Cache[V] {
	return &Cache[V]{
		items: make(map[string]*Item[V]),
		now:   time.Now,
	}
}

// Get retrieves a live item from the cache. Expired items are evicted.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}

	if c.now().After(item.ExpiresAt) {
		c.mutex.Lock()
		// re-check: the entry may have been replaced while unlocked
		if current, ok := c.items[key]; ok && current == item {
			delete(c.items, key)
		}
		c.mutex.Unlock()
		return zero, false
	}

	return item.Value, true
}

// Set stores an item in the cache with TTL
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &Item[V]{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Update atomically replaces a live item with fn(old). The expiry is kept.
// found is false when the key is missing or expired; fn is not called then.
// An error from fn leaves the item unchanged.
func (c *Cache[V]) Update(key string, fn func(V) (V, error)) (updated V, found bool, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.ExpiresAt) {
		delete(c.items, key)
		return updated, false, nil
	}

	next, err := fn(item.Value)
	if err != nil {
		return item.Value, true, err
	}

	item.Value = next
	return next, true, nil
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]*Item[V])
}

// Purge evicts expired items and returns how many were removed
func (c *Cache[V]) Purge() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, including expired ones not yet purged
func (c *Cache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}
