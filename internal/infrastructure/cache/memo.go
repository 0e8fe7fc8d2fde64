package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultTTL is the recommended lifetime of a memoized upstream response
const DefaultTTL = 60 * time.Second

type entry struct {
	payload  []byte
	storedAt time.Time
}

// MemoCache is an in-process key/value store with per-entry expiry.
// Expired entries are unreachable through Get but stay in the map until overwritten or cleared;
// the working key set is bounded by the number of coins, so nothing is purged proactively.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*MemoCache)(nil)

// NewMemoCache creates a memo cache; a non-positive ttl falls back to DefaultTTL
func NewMemoCache(ttl time.Duration) *MemoCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests
func (c *MemoCache) WithClock(now func() time.Time) *MemoCache {
	c.now = now
	return c
}

// TTL returns the lifetime applied to every entry
func (c *MemoCache) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a value from cache
func (c *MemoCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.valid(e) {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(e.payload, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// Set stores a value in cache
func (c *MemoCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = entry{payload: data, storedAt: c.now()}
	c.mu.Unlock()

	return nil
}

// Clear drops all entries
func (c *MemoCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Stats returns the number and names of entries that are still valid
func (c *MemoCache) Stats(_ context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	expired := 0
	for k, e := range c.entries {
		if c.valid(e) {
			keys = append(keys, k)
		} else {
			expired++
		}
	}
	sort.Strings(keys)

	return Stats{
		Backend: "memory",
		Size:    len(keys),
		Expired: expired,
		Keys:    keys,
	}, nil
}

func (c *MemoCache) valid(e entry) bool {
	return c.now().Sub(e.storedAt) < c.ttl
}
