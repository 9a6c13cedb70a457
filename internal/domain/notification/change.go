package notification

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
)

// Success messages shown after a mutation.
const (
	MsgAdded        = "Added successfully"
	MsgUpdated      = "Updated successfully"
	MsgDeleted      = "Deleted successfully"
	MsgRated        = "Rating updated successfully"
	MsgLoggedIn     = "Logged in Successfully"
	MsgSectionSaved = "Section updated successfully"
)

// Fallback error messages when the backend does not supply one.
const (
	MsgSaveFailed   = "Failed to save changes"
	MsgDeleteFailed = "Failed to delete"
	MsgRateFailed   = "Failed to update rating"
	MsgServerError  = "Server error"
)

// Action is what happened to a piece of content.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionRated   Action = "rated"
)

// ErrIncompleteChange is returned when a change lacks an entity or action.
var ErrIncompleteChange = errors.New("change needs an entity and an action")

// Change describes a successful content mutation for the change email.
type Change struct {
	Entity  string // "Potential", "Phase", ...
	Action  Action
	Title   string
	PhaseID int64
	Actor   string
	At      time.Time
}

// Validate checks that the change can be described.
func (c Change) Validate() error {
	if c.Entity == "" || c.Action == "" {
		return ErrIncompleteChange
	}
	return nil
}

// Subject renders e.g. "Potential 'Predictive maintenance' updated in phase 3 by alice".
func (c Change) Subject() string {
	var b strings.Builder
	b.WriteString(c.Entity)
	if c.Title != "" {
		fmt.Fprintf(&b, " '%s'", c.Title)
	}
	b.WriteString(" " + string(c.Action))
	if c.PhaseID > 0 {
		fmt.Fprintf(&b, " in phase %d", c.PhaseID)
	}
	if c.Actor != "" {
		b.WriteString(" by " + c.Actor)
	}
	return b.String()
}

// HTML renders the email body. All user content is escaped.
func (c Change) HTML() string {
	var b strings.Builder
	b.WriteString("<p>" + html.EscapeString(c.Subject()) + ".</p>")
	if !c.At.IsZero() {
		b.WriteString("<p><small>" + c.At.UTC().Format(time.RFC1123) + "</small></p>")
	}
	return b.String()
}
