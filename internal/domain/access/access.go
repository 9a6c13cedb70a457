// Package access derives what the current dashboard user may change.
package access

import "errors"

// ErrForbidden is returned when an edit is attempted without the required rights.
var ErrForbidden = errors.New("you are not allowed to change this content")

// Level is the right an edit requires.
type Level int

const (
	// LevelEditor needs a logged-in session with editing switched on.
	LevelEditor Level = iota
	// LevelAdmin additionally needs the admin role.
	LevelAdmin
)

// Context is the explicit auth state passed to every view and editor.
type Context struct {
	LoggedIn bool
	Admin    bool
	Editing  bool
}

// Anonymous is the context of a request without a session.
var Anonymous = Context{}

// CanEdit reports whether editor affordances are shown.
func (c Context) CanEdit() bool {
	return c.LoggedIn && c.Editing
}

// CanAdminEdit reports whether admin-only affordances are shown.
func (c Context) CanAdminEdit() bool {
	return c.CanEdit() && c.Admin
}

// Allows reports whether c satisfies level.
func (c Context) Allows(level Level) bool {
	if level == LevelAdmin {
		return c.CanAdminEdit()
	}
	return c.CanEdit()
}

// Require returns ErrForbidden unless c satisfies level.
func (c Context) Require(level Level) error {
	if !c.Allows(level) {
		return ErrForbidden
	}
	return nil
}
