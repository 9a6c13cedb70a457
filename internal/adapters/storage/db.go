package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// migrations are applied in order; index+1 is the schema version they produce.
// Append only.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS phase (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_no INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL,
		profile_info TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS subphase (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '[]',
		order_number INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (phase_id) REFERENCES phase(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS profile_section (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_id INTEGER NOT NULL,
		section_icon TEXT NOT NULL DEFAULT 'FileText',
		section_title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		reference_text TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (phase_id) REFERENCES phase(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS product_section (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		icon_name TEXT NOT NULL DEFAULT 'FileText',
		section_title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		reference_text TEXT,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS potential (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		rating INTEGER,
		FOREIGN KEY (phase_id) REFERENCES phase(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS matrix_category (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_id INTEGER NOT NULL,
		category_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		detail_text TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (phase_id) REFERENCES phase(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS app_user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS api_token (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES app_user(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_potential_phase ON potential(phase_id);
	CREATE INDEX IF NOT EXISTS idx_matrix_category_phase ON matrix_category(phase_id, category_type);
	CREATE INDEX IF NOT EXISTS idx_api_token_expires ON api_token(expires_at);
	`,
}

// LatestSchemaVersion is the version InitDB migrates to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// Open opens the SQLite database at path and migrates it.
// PRE: path is a file path or ":memory:"
// POST: Returns a migrated connection pool
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		// per-connection pragmas; PRAGMA statements below only reach one pooled connection
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDB enables WAL and foreign keys, then applies pending migrations.
// PRE: db is a valid database connection
// POST: schema_version equals LatestSchemaVersion()
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for v := current; v < len(migrations); v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, v+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		slog.Info("schema_migrated", "version", v+1)
	}
	return nil
}

// SchemaVersion returns the applied schema version (0 for a fresh database).
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(v.Int64), nil
}
