package storage

import (
	"database/sql"
	"sort"
	"testing"
)

// openTestDB creates a migrated in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestInitDB_CreatesTables(t *testing.T) {
	db := openTestDB(t)
	want := []string{
		"api_token", "app_user", "matrix_category", "phase", "potential",
		"product_section", "profile_section", "schema_version", "subphase",
	}
	got := getTableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("tables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitDB_RecordsLatestVersion(t *testing.T) {
	db := openTestDB(t)
	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}
}

func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("schema_version rows = %d, want 1", rows)
	}
}

func TestInitDB_ForeignKeysCascade(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`INSERT INTO phase (id, phase_no, title) VALUES (1, 1, 'Setting of objectives')`); err != nil {
		t.Fatalf("insert phase: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO potential (phase_id, category, title, description) VALUES (1, 'c', 't', 'd')`); err != nil {
		t.Fatalf("insert potential: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM phase WHERE id = 1`); err != nil {
		t.Fatalf("delete phase: %v", err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM potential`).Scan(&n)
	if n != 0 {
		t.Errorf("potentials after phase delete = %d, want 0", n)
	}
}

func TestInitDB_RejectsOrphans(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO potential (phase_id, category, title, description) VALUES (99, 'c', 't', 'd')`)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}
