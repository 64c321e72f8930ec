package common

import "time"

// CacheInterface is the key/value contract shared by the in-memory and Redis caches.
type CacheInterface interface {
	// Set stores a value with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Add stores value only if key is absent and reports whether it did.
	// Single-use tokens rely on this being atomic.
	Add(key string, value interface{}, duration time.Duration) bool

	Delete(key string)

	// GetOrSet returns the cached value or loads, stores and returns it
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	Close() error
}
