package orchestrators

import (
	"context"
	"log/slog"
	"time"

	emailAdapter "factoryplan/internal/adapters/email"
	"factoryplan/internal/domain/notification"
)

// NotifyContentChangeDeps holds dependencies for NotifyContentChange.
type NotifyContentChangeDeps struct {
	EmailSender emailAdapter.Sender
	FromAddress string
	ReplyTo     string
	Recipients  []string
	Now         func() time.Time
}

// ExecuteNotifyContentChange emails a one-line summary of a content change.
// PRE: change describes a mutation that already succeeded
// POST: One message is sent to all recipients, or nothing when none are configured
func ExecuteNotifyContentChange(ctx context.Context, change notification.Change, deps NotifyContentChangeDeps) error {
	if len(deps.Recipients) == 0 || deps.EmailSender == nil {
		return nil
	}
	if err := change.Validate(); err != nil {
		return err
	}
	if change.At.IsZero() && deps.Now != nil {
		change.At = deps.Now()
	}

	res, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      deps.Recipients,
		From:    deps.FromAddress,
		Subject: change.Subject(),
		HTML:    change.HTML(),
		ReplyTo: deps.ReplyTo,
	})
	if err != nil {
		slog.Warn("change_notify_failed", "entity", change.Entity, "action", change.Action, "error", err)
		return err
	}
	slog.Info("change_notified", "entity", change.Entity, "action", change.Action, "message_id", res.MessageID, "recipients", len(deps.Recipients))
	return nil
}

// Notifier is called after a successful mutation. A nil Notifier does nothing.
type Notifier func(ctx context.Context, change notification.Change)

func (n Notifier) notify(ctx context.Context, change notification.Change) {
	if n != nil {
		n(ctx, change)
	}
}
