// Package gateway issues targeted writes: partial updates to the remote
// store and local clipboard copies. It never mutates the local mirror -
// the remote stream is the sole source of truth, and an optimistic local
// update would only fight the next snapshot.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"github.com/visitorhub/visitorhub/internal/logging"
	"github.com/visitorhub/visitorhub/internal/source"
)

// updateTimeout bounds a remote partial update. The call is
// fire-and-forget from the user's perspective, but an unbounded hang
// would still pin a goroutine.
const updateTimeout = 10 * time.Second

// Gateway wraps the remote updater and the system clipboard.
type Gateway struct {
	updater source.Updater

	// writeClipboard is swappable for tests.
	writeClipboard func(string) error
}

// New creates a Gateway backed by the given updater and the system
// clipboard.
func New(updater source.Updater) *Gateway {
	return &Gateway{
		updater:        updater,
		writeClipboard: clipboard.WriteAll,
	}
}

// MarkRead clears the unread flag on a single remote record. The effect
// becomes visible only when the next stream snapshot reflects it; there
// is no local mutation and no automatic retry. Failures are logged and
// otherwise swallowed.
func (g *Gateway) MarkRead(ctx context.Context, id string) error {
	if g.updater == nil {
		return fmt.Errorf("mark read %s: no updater configured", id)
	}

	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	err := g.updater.Update(ctx, id, map[string]any{source.FieldUnread: false})
	if err != nil {
		logging.Error("Mark read failed", "id", id, "error", err)
		return err
	}

	logging.Debug("Mark read issued", "id", id)
	return nil
}

// CopyText writes a value to the clipboard. Empty values are a no-op and
// report false so the caller raises no notification. A clipboard error is
// logged but still reports true - the user sees the same confirmation the
// original surface gave.
func (g *Gateway) CopyText(value, label string) bool {
	if value == "" {
		return false
	}
	if err := g.writeClipboard(value); err != nil {
		logging.Warn("Clipboard write failed", "label", label, "error", err)
	}
	return true
}
