package notification_test

import (
	"strings"
	"testing"
	"time"

	"factoryplan/internal/domain/notification"
)

func TestChange_Subject(t *testing.T) {
	tests := []struct {
		name   string
		change notification.Change
		want   string
	}{
		{"full", notification.Change{Entity: "Potential", Action: notification.ActionUpdated, Title: "Predictive maintenance", PhaseID: 3, Actor: "alice"},
			"Potential 'Predictive maintenance' updated in phase 3 by alice"},
		{"no phase", notification.Change{Entity: "Product section", Action: notification.ActionUpdated, Title: "Variants", Actor: "bob"},
			"Product section 'Variants' updated by bob"},
		{"bare", notification.Change{Entity: "Phase", Action: notification.ActionDeleted},
			"Phase deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.change.Subject(); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChange_HTMLEscapes(t *testing.T) {
	c := notification.Change{
		Entity: "Potential",
		Action: notification.ActionAdded,
		Title:  "<script>alert(1)</script>",
		At:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	body := c.HTML()
	if strings.Contains(body, "<script>") {
		t.Errorf("title not escaped: %s", body)
	}
	if !strings.Contains(body, "Sun, 01 Mar 2026 12:00:00 UTC") {
		t.Errorf("timestamp missing: %s", body)
	}
}

func TestChange_Validate(t *testing.T) {
	if err := (notification.Change{Entity: "Phase"}).Validate(); err != notification.ErrIncompleteChange {
		t.Errorf("expected ErrIncompleteChange, got %v", err)
	}
	if err := (notification.Change{Entity: "Phase", Action: notification.ActionAdded}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
