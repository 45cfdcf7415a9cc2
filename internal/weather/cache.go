package weather

import (
	"sync"
	"time"

	"fishcast/internal/types"
)

// Cache is a bounded TTL cache of weather snapshots keyed by location.
// It is owned by the caller and shared by reference, so the API server
// and the workers can decide their own retention independently.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snapshot types.WeatherSnapshot
	storedAt time.Time
}

// NewCache builds a cache holding at most maxSize entries, each fresh
// for ttl after insertion.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]cacheEntry, maxSize),
	}
}

// Get returns a copy of the cached snapshot when it is still fresh.
func (c *Cache) Get(key string, now time.Time) (*types.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	snap := entry.snapshot
	snap.DataIssues = append([]string(nil), entry.snapshot.DataIssues...)
	return &snap, true
}

// Put stores a copy of the snapshot, evicting the oldest entry when
// the cache is full.
func (c *Cache) Put(key string, snapshot *types.WeatherSnapshot, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	snap := *snapshot
	snap.DataIssues = append([]string(nil), snapshot.DataIssues...)
	c.entries[key] = cacheEntry{snapshot: snap, storedAt: now}
}

// Len reports the current entry count, for metrics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
