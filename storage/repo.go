package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Repo defines the interface for durable local key-value storage.
// It is the client-side equivalent of the browser's localStorage: string keys,
// string values, synchronous write-through on every mutation.
type Repo interface {
	// Get retrieves the value for a key, ErrNotFound if absent
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value under a key, overwriting any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
