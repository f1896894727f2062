package common

import "time"

// CacheInterface is the cache contract the tenant resolver depends on. The
// in-process go-cache implementation backs it today; a Redis-backed one can
// replace it without touching the services.
type CacheInterface interface {
	// Set stores a value under key for the given duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Delete removes a value by key
	Delete(key string)

	// GetOrSet retrieves a value, or loads and stores it when absent
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close releases any underlying connections
	Close() error
}
