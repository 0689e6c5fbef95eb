// Package notify manages the single ephemeral user-facing message.
//
// At most one notification is visible at a time. A new one replaces any
// pending one and restarts the expiry clock. Expiry is token-guarded: a
// late timer belonging to a replaced notification must never clear a
// newer one it doesn't own.
package notify

import "time"

// TTL is how long a notification stays visible.
const TTL = 3 * time.Second

// Kind classifies a notification for presentation.
type Kind int

const (
	Success Kind = iota
	Info
)

// Notification is one ephemeral message.
type Notification struct {
	Message string
	Kind    Kind
	At      time.Time
}

// Token identifies one notification instance for expiry ownership.
type Token uint64

// Center holds the currently visible notification, if any.
type Center struct {
	current *Notification
	seq     Token
}

// Notify replaces the current notification and returns the token its
// expiry timer must present to Expire.
func (c *Center) Notify(message string, kind Kind) Token {
	c.seq++
	c.current = &Notification{Message: message, Kind: kind, At: time.Now()}
	return c.seq
}

// Expire clears the notification only if the token still owns it.
// Returns true if something was cleared.
func (c *Center) Expire(token Token) bool {
	if c.current == nil || token != c.seq {
		return false
	}
	c.current = nil
	return true
}

// Current returns the visible notification, or nil.
func (c *Center) Current() *Notification {
	return c.current
}
