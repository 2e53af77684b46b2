package storage

import "context"

// KV is the persisted key-value contract the engine relies on. Writes are
// full-document replaces; no partial-write semantics are assumed. The member
// methods mirror the browser storage primitives the dashboard runs against.
type KV interface {
	// Get returns the stored document for key. The boolean reports whether
	// the key exists; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the stored document for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key if present.
	Delete(ctx context.Context, key string) error
}
