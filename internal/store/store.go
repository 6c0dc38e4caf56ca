// Package store persists the two enrichment caches and the analysis history
// in SQLite. Cache writes never fail their callers: the caches are a
// performance optimization, not a correctness dependency.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store owns the database handle shared by the cache and history tables.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and initializes the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers; SQLite upserts are then
	// atomic per key without any extra locking on our side.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
