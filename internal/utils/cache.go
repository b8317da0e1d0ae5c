package utils

import (
	"sort"
	"sync"
)

// Cache is a concurrency-safe map used to remember per-key state across
// runs, such as the fingerprint of the last descriptor rendered for a target
type Cache[K comparable, V comparable] struct {
	items map[K]V
	mutex sync.RWMutex
}

// NewCache creates a new generic cache
func NewCache[K comparable, V comparable]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, ok := c.items[key]
	return value, ok
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = value
}

// Changed stores value under key and reports whether it differs from what
// was stored before
func (c *Cache[K, V]) Changed(key K, value V) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	previous, ok := c.items[key]
	c.items[key] = value
	return !ok || previous != value
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Retain drops every key keep rejects
func (c *Cache[K, V]) Retain(keep func(K) bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key := range c.items {
		if !keep(key) {
			delete(c.items, key)
		}
	}
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]V)
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// Keys returns all keys in the cache, sorted by less
func (c *Cache[K, V]) Keys(less func(a, b K) bool) []K {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]K, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	if less != nil {
		sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	}
	return keys
}
