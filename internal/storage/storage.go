// Package storage abstracts the ingestion source and the result sink behind a
// narrow object-store capability, so the pipeline never depends on a specific
// filesystem or transport.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the requested key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is the capability the pipeline needs from its data plane: list the
// objects under a prefix, read one, and write one (overwriting any previous
// version of the same key).
type Store interface {
	// List returns the keys of all objects directly under the given prefix.
	// A prefix with no objects returns an empty slice, not an error.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get reads the full content of the object at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes data at key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
}
