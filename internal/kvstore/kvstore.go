// Package kvstore provides the durable key-value record store the state core
// persists to. Records are opaque byte slices addressed by string keys.
package kvstore

import "errors"

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// Store reads and writes named records. Implementations must treat a Delete
// of a missing key as a no-op.
type Store interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing record.
	Set(key string, value []byte) error

	// Delete removes the record under key if present.
	Delete(key string) error
}
