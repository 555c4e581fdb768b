package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maloquacious/roster/internal/people"
	"github.com/maloquacious/roster/internal/store"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath         string
	db             *sql.DB
	expectedSchema string
}

var _ store.Store = (*SQLiteStore)(nil)

// New creates a new SQLiteStore.
func New(dbPath string, expectedSchema string) *SQLiteStore {
	return &SQLiteStore{
		dbPath:         dbPath,
		expectedSchema: expectedSchema,
	}
}

// storageErr marks err as a failure of the medium.
func storageErr(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", store.ErrStorage, action, err)
}

// Open opens the SQLite database with safe defaults.
func (s *SQLiteStore) Open() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return storageErr("open database", err)
	}

	// one connection: writes serialize and pragmas apply to every statement
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Apply safe defaults
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return storageErr(fmt.Sprintf("set pragma %q", pragma), err)
		}
	}

	s.db = db
	return nil
}

// Close closes the database connection. The handle stays set, so callers
// racing with Close get a wrapped ErrStorage and a second Close is a no-op.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InitSchema creates the schema, records version and seeds an empty people
// table. Everything happens in one transaction, so a second call (or a
// call against a populated table) changes nothing.
func (s *SQLiteStore) InitSchema(version string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(initialSchema); err != nil {
		return storageErr("create schema", err)
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, strftime('%s', 'now'))`, version)
	if err != nil {
		return storageErr("insert schema version", err)
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return storageErr("count people", err)
	}
	if count == 0 {
		stmt, err := tx.Prepare(insertPerson)
		if err != nil {
			return storageErr("prepare seed insert", err)
		}
		defer stmt.Close()
		for _, rec := range seedPeople {
			if _, err := stmt.Exec(insertArgs(rec)...); err != nil {
				return storageErr("seed people", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState() (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, fmt.Errorf("database not opened")
	}

	// Both tables must exist
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('schema_migrations', 'people')`).Scan(&count)
	if err != nil {
		return store.StateUninitialized, storageErr("check tables", err)
	}

	if count < 2 {
		return store.StateUninitialized, nil
	}

	// Check schema version
	version, err := s.GetSchemaVersion()
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}

	if version != s.expectedSchema {
		return store.StateVersionMismatch, nil
	}

	return store.StateReady, nil
}

// GetSchemaVersion returns the current schema version from the database.
func (s *SQLiteStore) GetSchemaVersion() (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var version string
	err := s.db.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC, rowid DESC LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", storageErr("query schema version", err)
	}

	return version, nil
}

// Insert stores rec in a single statement; SQLite assigns the id.
func (s *SQLiteStore) Insert(ctx context.Context, rec people.Record) (people.Person, error) {
	if s.db == nil {
		return people.Person{}, storageErr("insert person", fmt.Errorf("database not opened"))
	}

	res, err := s.db.ExecContext(ctx, insertPerson, insertArgs(rec)...)
	if err != nil {
		return people.Person{}, storageErr("insert person", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return people.Person{}, storageErr("read person id", err)
	}

	return people.Person{ID: id, Record: rec}, nil
}

// ListAll returns every person ordered by id. The result is never nil.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]people.Person, error) {
	if s.db == nil {
		return nil, storageErr("list people", fmt.Errorf("database not opened"))
	}

	rows, err := s.db.QueryContext(ctx, selectPeople)
	if err != nil {
		return nil, storageErr("list people", err)
	}
	defer rows.Close()

	list := []people.Person{}
	for rows.Next() {
		var p people.Person
		if err := rows.Scan(scanArgs(&p)...); err != nil {
			return nil, storageErr("scan person", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list people", err)
	}

	return list, nil
}

// Count returns the number of stored people.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storageErr("count people", fmt.Errorf("database not opened"))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return 0, storageErr("count people", err)
	}
	return count, nil
}

// insertArgs follows people.Fields.
func insertArgs(rec people.Record) []any {
	args := []any{rec.FirstName, rec.LastName, rec.DateOfBirth, rec.Address, rec.ZIP}
	for _, t := range rec.Indicators() {
		args = append(args, *t)
	}
	return args
}

// scanArgs follows selectPeople.
func scanArgs(p *people.Person) []any {
	dest := []any{&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Address, &p.ZIP}
	for _, t := range p.Indicators() {
		dest = append(dest, t)
	}
	return dest
}
