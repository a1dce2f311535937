package cache

import "time"

// Snapshot is one cached data category, keyed by algorithm name.
type Snapshot map[string]float64

// Cache stores per-category snapshots with TTL expiry.
type Cache interface {
	Get(key string) (Snapshot, bool)
	Set(key string, value Snapshot)
	SetTTL(key string, value Snapshot, ttl time.Duration)
	Clear()
	Size() int
}
