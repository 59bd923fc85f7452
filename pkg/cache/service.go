package cache

import "time"

// CacheService is the process-local cache used for the remote zone list and
// the tariff snapshot. Both are cheap to refetch, so eviction is purely
// TTL-driven.
type CacheService interface {
	// Get returns the cached value and whether it was present.
	Get(key string) (interface{}, bool)

	// Set stores a value for the given duration.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a single key.
	Delete(key string)

	// Flush removes all items.
	Flush()
}
