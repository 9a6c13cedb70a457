package notification

import "time"

// Kind distinguishes success from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Default lifetimes.
const (
	InlineTTL       = 3 * time.Second
	DialogAutoClose = 1 * time.Second
)

// Notification is an inline, auto-expiring message shown after an action.
type Notification struct {
	Kind    Kind
	Message string
	TTL     time.Duration
}

// Success builds a success notification with the inline lifetime.
func Success(msg string) Notification {
	return Notification{Kind: KindSuccess, Message: msg, TTL: InlineTTL}
}

// Error builds an error notification with the inline lifetime.
func Error(msg string) Notification {
	return Notification{Kind: KindError, Message: msg, TTL: InlineTTL}
}

// IsError reports whether n is an error notification.
func (n Notification) IsError() bool {
	return n.Kind == KindError
}

// ExpiresMs is the lifetime in milliseconds, used by the page to hide the message.
func (n Notification) ExpiresMs() int64 {
	if n.TTL <= 0 {
		return InlineTTL.Milliseconds()
	}
	return n.TTL.Milliseconds()
}

// Dialog is a modal success dialog that closes itself and optionally redirects.
type Dialog struct {
	Title      string
	Message    string
	AutoClose  time.Duration
	RedirectTo string
}

// SuccessDialog builds a "Success" dialog closing after DialogAutoClose.
func SuccessDialog(msg, redirectTo string) Dialog {
	return Dialog{
		Title:      "Success",
		Message:    msg,
		AutoClose:  DialogAutoClose,
		RedirectTo: redirectTo,
	}
}

// AutoCloseMs is the auto-close delay in milliseconds.
func (d Dialog) AutoCloseMs() int64 {
	if d.AutoClose <= 0 {
		return DialogAutoClose.Milliseconds()
	}
	return d.AutoClose.Milliseconds()
}

// Flash is the one-shot message set carried to the next page render.
type Flash struct {
	Notification *Notification
	Dialog       *Dialog
}

// Empty reports whether there is nothing to show.
func (f Flash) Empty() bool {
	return f.Notification == nil && f.Dialog == nil
}
