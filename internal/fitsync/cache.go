package fitsync

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long cached vendor reads stay fresh.
const DefaultTTL = 5 * time.Minute

// Key addresses one cached vendor result. Params disambiguates calls to the
// same resource with different arguments (e.g. calendar month).
type Key struct {
	UserID   uuid.UUID
	Resource string
	Params   string
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL cache for read-heavy vendor data (activities, calendar,
// daily stats). Any successful mutation for a user invalidates every entry
// for that user: vendor calendars have cross-resource side effects, so the
// engine trades precision for never serving a stale view after a write.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[Key]cacheEntry
}

// NewCache creates a cache with the given TTL (DefaultTTL if zero).
func NewCache(ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]cacheEntry),
	}
}

// Get returns the cached value for key, or false on a miss. An entry older
// than the TTL is a miss.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores a value for key, replacing any previous entry.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// InvalidateUser drops every entry belonging to the user.
func (c *Cache) InvalidateUser(userID uuid.UUID) {
	c.mu.Lock()
	for k := range c.entries {
		if k.UserID == userID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Cached is a typed Get: a hit whose value is not a T counts as a miss.
func Cached[T any](c *Cache, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
