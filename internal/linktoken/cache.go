// Package linktoken caches aggregator link tokens in memory. The cache is a
// plain injected value with an explicit lifecycle, so tests can construct
// and reset it deterministically instead of fighting package-level state.
package linktoken

import (
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// Cache maps user IDs to unexpired link tokens. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached token for the user, if one exists and has not
// expired. Expired entries are evicted on access.
func (c *Cache) Get(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, userID)
		return "", false
	}
	return e.token, true
}

// Put stores a token for the user until expiresAt.
func (c *Cache) Put(userID, token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry{token: token, expiresAt: expiresAt}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
