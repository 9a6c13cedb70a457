package user

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"factoryplan/internal/adapters/storage"
	domain "factoryplan/internal/domain/user"
)

// fixed width so expires_at compares correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByUsername retrieves a user.
// PRE: username is non-empty
// POST: Returns the user or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM app_user WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt)
	if err == sql.ErrNoRows {
		return domain.User{}, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = parseTime(createdAt, "created_at")
	return u, nil
}

// Save inserts or updates a user keyed by username.
// PRE: u has been validated and has a password hash
// POST: Returns the id of the stored row
func (s *SQLiteStore) Save(ctx context.Context, u domain.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO app_user (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash=excluded.password_hash, role=excluded.role
		 RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.CreatedAt.UTC().Format(timeLayout)).Scan(&id)
	return id, err
}

// Count returns the number of users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&n)
	return n, err
}

// SaveToken stores an issued bearer token.
func (s *SQLiteStore) SaveToken(ctx context.Context, t domain.Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_token (token, user_id, role, expires_at) VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, t.Role, t.ExpiresAt.UTC().Format(timeLayout))
	return err
}

// GetToken looks up a bearer token. Expiry is left to the caller.
// POST: Returns the token or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetToken(ctx context.Context, token string) (domain.Token, error) {
	var t domain.Token
	var expires string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, role, expires_at FROM api_token WHERE token = ?`, token).
		Scan(&t.Token, &t.UserID, &t.Role, &expires)
	if err == sql.ErrNoRows {
		return domain.Token{}, fmt.Errorf("token not found: %w", err)
	}
	if err != nil {
		return domain.Token{}, err
	}
	t.ExpiresAt = parseTime(expires, "expires_at")
	return t, nil
}

// DeleteExpiredTokens removes tokens that expired at or before now.
// POST: Returns the number of removed tokens
func (s *SQLiteStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_token WHERE expires_at <= ?`, now.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func parseTime(raw, field string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("user: failed to parse time", "field", field, "raw", raw, "error", err)
	}
	return t
}
