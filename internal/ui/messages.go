// Package ui provides the Bubble Tea TUI for Visitor Hub.
package ui

import "github.com/visitorhub/visitorhub/internal/notify"

// MarkReadDone is sent when a remote mark-read call returns.
// A failure carries no user-facing consequence; it was already logged.
type MarkReadDone struct {
	ID  string
	Err error
}

// Copied is sent after a clipboard copy. OK is false for empty values,
// which are a silent no-op.
type Copied struct {
	Label string
	OK    bool
}

// InsightDone is sent when an insight round trip finishes. Text is
// either the generated analysis or the fixed fallback message.
type InsightDone struct {
	Text string
}

// toastExpired fires when a toast's clear timer elapses. The token lets
// the notification center ignore timers from replaced toasts.
type toastExpired struct {
	token notify.Token
}
