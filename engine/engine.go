// Package engine defines the storage collaborator consumed by cacheman.
//
// An Engine owns everything about storage: eviction, TTL expiry and any
// backend protocol. cacheman only frames values, composes keys and
// sequences calls.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte that was previously passed to Set for a key. If a store
// transforms values internally (compression, expiry headers), the transform
// must be fully reversed before Get returns.
//
// The keyspace "<prefix>:<namespace>:" is owned by the cacheman instance
// configured with that prefix and namespace. Foreign writes under it may be
// treated as corruption and deleted.
package engine

import (
	"context"
	"time"
)

// Engine is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Engine interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss or expiry.
	// If an IO/remote error happens, return (nil, false, err).
	// The returned slice belongs to the caller and must not alias stored memory.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. A missing key is not an error.
	Del(ctx context.Context, key string) error

	// Clear removes the entries whose keys start with prefix. Engines that
	// cannot scope a purge may drop everything they hold and must say so.
	Clear(ctx context.Context, prefix string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
