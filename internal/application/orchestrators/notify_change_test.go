package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	emailAdapter "factoryplan/internal/adapters/email"
	"factoryplan/internal/domain/notification"
)

type failingSender struct{}

func (failingSender) Send(context.Context, emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	return emailAdapter.SendResult{}, errors.New("provider down")
}

func notifyDeps(sender emailAdapter.Sender, recipients ...string) NotifyContentChangeDeps {
	return NotifyContentChangeDeps{
		EmailSender: sender,
		FromAddress: "Factory Planning <noreply@example.com>",
		Recipients:  recipients,
		Now:         fixedNow,
	}
}

// TestExecuteNotifyContentChange_Sends tests that one message goes to all recipients.
func TestExecuteNotifyContentChange_Sends(t *testing.T) {
	sender := emailAdapter.NewNoopSender()
	change := notification.Change{Entity: "Potential", Action: notification.ActionUpdated, Title: "X", PhaseID: 3, Actor: "alice"}

	if err := ExecuteNotifyContentChange(context.Background(), change, notifyDeps(sender, "a@example.com", "b@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].Subject != "Potential 'X' updated in phase 3 by alice" {
		t.Errorf("unexpected subject %q", sent[0].Subject)
	}
	if len(sent[0].To) != 2 {
		t.Errorf("expected 2 recipients, got %v", sent[0].To)
	}
	if !strings.Contains(sent[0].HTML, "2026") {
		t.Errorf("expected timestamp from Now in body: %s", sent[0].HTML)
	}
}

// TestExecuteNotifyContentChange_NoRecipients tests that nothing is sent without recipients.
func TestExecuteNotifyContentChange_NoRecipients(t *testing.T) {
	sender := emailAdapter.NewNoopSender()
	change := notification.Change{Entity: "Phase", Action: notification.ActionAdded}
	if err := ExecuteNotifyContentChange(context.Background(), change, notifyDeps(sender)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.Sent()) != 0 {
		t.Error("expected no message")
	}
}

// TestExecuteNotifyContentChange_Errors tests invalid changes and provider failures.
func TestExecuteNotifyContentChange_Errors(t *testing.T) {
	if err := ExecuteNotifyContentChange(context.Background(), notification.Change{}, notifyDeps(emailAdapter.NewNoopSender(), "a@example.com")); !errors.Is(err, notification.ErrIncompleteChange) {
		t.Errorf("expected ErrIncompleteChange, got %v", err)
	}
	change := notification.Change{Entity: "Phase", Action: notification.ActionDeleted}
	if err := ExecuteNotifyContentChange(context.Background(), change, notifyDeps(failingSender{}, "a@example.com")); err == nil {
		t.Error("expected provider error")
	}
}

// TestNotifier_Nil tests that a nil Notifier is safe.
func TestNotifier_Nil(t *testing.T) {
	var n Notifier
	n.notify(context.Background(), notification.Change{})
}
