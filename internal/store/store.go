// Package store defines the person datastore contract and file helpers
// shared by its implementations.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultDBFile = "roster.db"
)

// CheckExists verifies if the datastore exists at the given path.
// Returns true if the store exists, false otherwise.
func CheckExists(dbPath string) (bool, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// GetDBPath returns the database file for a configured path. A directory
// (or a path ending in a separator) gets DefaultDBFile appended.
func GetDBPath(path string) string {
	if path == "" {
		return DefaultDBFile
	}
	if os.IsPathSeparator(path[len(path)-1]) {
		return filepath.Join(path, DefaultDBFile)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, DefaultDBFile)
	}
	return path
}
