package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a file-backed Store keeping one <key>.json file per record under a
// data directory. It is the browser-localStorage analog for a local process.
type Dir struct {
	path string
}

// NewDir creates the data directory if needed and returns a Dir store.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.path, key+".json")
}

// Get implements the Store interface.
func (d *Dir) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(d.file(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %q: %w", key, err)
	}
	return data, nil
}

// Set implements the Store interface.
func (d *Dir) Set(key string, value []byte) error {
	if err := os.WriteFile(d.file(key), value, 0o644); err != nil {
		return fmt.Errorf("failed to write record %q: %w", key, err)
	}
	return nil
}

// Delete implements the Store interface.
func (d *Dir) Delete(key string) error {
	err := os.Remove(d.file(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record %q: %w", key, err)
	}
	return nil
}

// Ensure Dir implements Store.
var _ Store = (*Dir)(nil)
