// Package storage defines the pluggable object-store backend interface.
//
// Keys are hierarchical strings ("/"-separated), values are raw bytes.
// Backends must be safe for concurrent use. The production backend is NATS
// JetStream ObjectStore (storage/objectstore); tests use the in-memory
// backend (storage/memstore).
package storage

import "context"

// Store is the object-store backend interface. It exposes exactly the
// primitives an eventually-consistent object store provides: no multi-key
// transactions, no secondary indexes, prefix listing only.
type Store interface {
	// Put stores data at key, overwriting any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the value at key. Returns an error wrapping
	// errors.ErrKeyNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the value at key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys starting with prefix, in lexicographic order.
	// Backends page through continuation internally; callers always see
	// the complete result. An empty prefix lists every key.
	List(ctx context.Context, prefix string) ([]string, error)
}
