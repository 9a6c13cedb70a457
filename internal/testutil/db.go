// Package testutil holds shared fixtures for store and handler tests.
package testutil

import (
	"database/sql"
	"testing"

	"factoryplan/internal/adapters/storage"
)

// NewTestDB returns a migrated in-memory database closed at test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// InsertPhase adds a phase row and returns its id.
func InsertPhase(t *testing.T, db *sql.DB, no int, title string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO phase (phase_no, title, profile_info) VALUES (?, ?, ?)`, no, title, title+" profile")
	if err != nil {
		t.Fatalf("insert phase %d: %v", no, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
