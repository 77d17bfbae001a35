package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is the in-memory tier with LRU eviction bounded by the total
// size of the stored samples.
type MemoryCache struct {
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats Stats
}

type memoryEntry struct {
	key       string
	samples   []float32
	size      int64
	timestamp time.Time
	hits      int64
}

// NewMemoryCache creates a new memory cache with the specified capacity in bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the cached samples for key. The slice is shared and must not
// be modified.
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	samples, _, ok := c.GetWithMetadata(key)
	return samples, ok
}

// GetWithMetadata retrieves samples along with their metadata.
func (c *MemoryCache) GetWithMetadata(key string) ([]float32, Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, Metadata{}, false
	}

	c.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)
	entry.hits++
	c.stats.Hits++
	c.stats.LastAccess = time.Now()

	return entry.samples, Metadata{
		Key:        entry.key,
		Size:       entry.size,
		Samples:    len(entry.samples),
		Timestamp:  entry.timestamp,
		LastAccess: c.stats.LastAccess,
		Hits:       entry.hits,
		Level:      LevelMemory,
	}, true
}

// Put stores samples under key, evicting the least recently used entries
// to make room.
func (c *MemoryCache) Put(key string, samples []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := sampleBytes(samples)
	if size > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	for c.size+size > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&memoryEntry{
		key:       key,
		samples:   samples,
		size:      size,
		timestamp: time.Now(),
	})
	c.items[key] = elem
	c.size += size
	return nil
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Contains checks if a key exists in the cache without updating LRU.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Size returns the current cache size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	stats.updateHitRate()
	return stats
}

// Resize changes the cache capacity, evicting as needed.
func (c *MemoryCache) Resize(capacity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = capacity
	c.stats.Capacity = capacity
	for c.size > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}
}

// Prune removes entries stored more than maxAge ago.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).timestamp.Before(cutoff) {
			c.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// evictOldest must be called with the lock held.
func (c *MemoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}
}

// removeElement must be called with the lock held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(c.items, entry.key)
	c.size -= entry.size
}
