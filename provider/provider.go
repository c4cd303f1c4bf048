// Package provider defines the byte store that shard sources read from.
//
// A shard is one serialized blob (see source.WriteShard) holding one or more
// records. Stores must be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set for that key, without added metadata or
// re-encoding. Framing and validation are done by the reader.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (<= 0 means no expiry where supported).
	// cost is a hint for cost-aware stores. Returns ok=false when the store
	// rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
