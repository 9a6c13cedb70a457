package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrConflict wraps unique constraint violations.
var ErrConflict = errors.New("conflicts with an existing record")

// MapConstraint turns a SQLite unique constraint failure into ErrConflict and
// passes every other error through.
func MapConstraint(err error, entity string) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s %w", entity, ErrConflict)
	}
	return err
}

// RequireAffected turns an UPDATE or DELETE that touched no row into an error wrapping sql.ErrNoRows.
func RequireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d not found: %w", entity, id, sql.ErrNoRows)
	}
	return nil
}

// NullableString maps nil to NULL.
func NullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// StringPtr maps NULL to nil.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
