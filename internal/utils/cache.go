package utils

import (
	"io/fs"
	"os"
	"sync"
	"time"
)

// CacheItem is a cached value with the file metadata it was built from
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// Cache is a concurrency-safe map whose entries can be tied to a file and
// dropped once that file changes on disk.
type Cache[K comparable, V any] struct {
	items map[K]*CacheItem[V]
	mutex sync.RWMutex
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*CacheItem[V]),
	}
}

// Get retrieves an item without validating it against the file system
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, exists := c.items[key]; exists {
		return item.Value, true
	}

	var zero V
	return zero, false
}

// GetWithFileInfo returns the cached item only while it was stored with the
// modification time and size in info. Stale items are evicted.
func (c *Cache[K, V]) GetWithFileInfo(key K, info fs.FileInfo) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}
	if info.ModTime().Equal(item.ModTime) && info.Size() == item.Size {
		return item.Value, true
	}

	c.mutex.Lock()
	delete(c.items, key)
	c.mutex.Unlock()

	return zero, false
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheItem[V]{Value: value}
}

// SetWithFileInfo stores an item together with the file metadata it was
// built from
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, info fs.FileInfo) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheItem[V]{
		Value:   value,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}

// GetOrLoadFile returns the valid cached item for filePath, or calls load and
// caches its result. filePath is stat'ed before load runs, so a write racing
// with load leaves a stale item that the next call reloads. Load errors are
// not cached.
func (c *Cache[K, V]) GetOrLoadFile(key K, filePath string, load func() (V, error)) (V, error) {
	info, statErr := os.Stat(filePath)
	if statErr == nil {
		if value, ok := c.GetWithFileInfo(key, info); ok {
			return value, nil
		}
	} else {
		c.Delete(key)
	}

	value, err := load()
	if err != nil || statErr != nil {
		return value, err
	}
	c.SetWithFileInfo(key, value, info)
	return value, nil
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
