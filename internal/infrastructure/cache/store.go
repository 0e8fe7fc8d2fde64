package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss indicates the key was not found in cache or has expired
var ErrCacheMiss = errors.New("cache miss")

// Stats is a read-only view of the cache contents for operational tooling
type Stats struct {
	Backend string   `json:"backend"`
	Size    int      `json:"size"`
	Expired int      `json:"expired"` // Physically present but no longer readable
	Keys    []string `json:"keys"`
}

// Store is a key/value cache with a uniform TTL fixed at construction.
// Values are JSON-serializable payloads.
type Store interface {
	// Get decodes the value stored under key into dest, or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores value under key, overwriting any prior entry
	Set(ctx context.Context, key string, value interface{}) error

	// Clear drops all entries
	Clear(ctx context.Context) error

	// Stats reports the live entries without mutating state
	Stats(ctx context.Context) (Stats, error)
}
