package store

import (
	"context"
	"errors"

	"github.com/maloquacious/roster/internal/people"
)

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version_mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// ErrStorage marks a failure of the underlying medium. It is never retried;
// callers report it without the wrapped detail.
var ErrStorage = errors.New("storage failure")

// Store defines the roster datastore contract.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens the datastore connection
	Open() error

	// Close closes the datastore connection
	Close() error

	// InitSchema creates the schema, records the version and seeds sample
	// people into an empty table. Safe to call on every start.
	InitSchema(version string) error

	// CheckState returns the current state of the datastore
	CheckState() (StoreState, error)

	// GetSchemaVersion returns the current schema version from the database
	GetSchemaVersion() (string, error)

	// Insert stores a validated record and returns it with its new id.
	Insert(ctx context.Context, rec people.Record) (people.Person, error)

	// ListAll returns every person ordered by id.
	ListAll(ctx context.Context) ([]people.Person, error)

	// Count returns the number of stored people.
	Count(ctx context.Context) (int, error)
}
