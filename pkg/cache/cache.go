// Package cache stores enumeration results between runs.
//
// Enumerating the safe phases of a junction is cheap for typical junctions
// but grows with the number of cliques in the compatibility graph, and the
// same network is analysed over and over by simulation runs. Results are
// cached under a key derived from the canonical encoding of the conflict
// matrix (see [Keyer]), so renaming a file or reordering junctions in a
// network does not invalidate anything.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [BadgerCache]: embedded key-value store, for long-running local use
//   - [RedisCache]: shared cache for the HTTP API and batch workers
//
// All backends treat a corrupt or expired entry as a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
