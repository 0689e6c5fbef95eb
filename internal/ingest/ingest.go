// Package ingest owns the live subscription to the remote visitor store.
//
// It is the single writer feeding the local mirror: every snapshot the
// source pushes is forwarded to the UI program as a message, where the
// event loop applies it. Uses context cancellation as the stop
// mechanism; teardown is synchronous, so no delivery leaks past it.
package ingest

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/visitorhub/visitorhub/internal/logging"
	"github.com/visitorhub/visitorhub/internal/source"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

// SnapshotMsg carries one complete ordered snapshot. It fully replaces
// whatever was delivered before - never merged.
type SnapshotMsg struct {
	Records []visitor.Record
}

// StreamErrMsg reports a subscription error. The receiver must keep the
// last known record set in place; the error is operational only.
type StreamErrMsg struct {
	Err error
}

// Program is the message sink, satisfied by *tea.Program.
type Program interface {
	Send(msg tea.Msg)
}

// Ingestor maintains exactly one live subscription per instance.
type Ingestor struct {
	streamer source.Streamer

	mu     sync.Mutex
	cancel func()
	wg     sync.WaitGroup
}

// New creates an Ingestor. A nil streamer is allowed: the source was
// never configured, and the app silently stays in its loading state with
// an empty record set.
func New(streamer source.Streamer) *Ingestor {
	return &Ingestor{streamer: streamer}
}

// Start establishes the subscription and forwards deliveries to the
// program. Call with a cancellable context; when ctx is done the
// subscription is torn down and Wait unblocks.
//
// A second Start while subscribed is rejected - one live connection at a
// time.
func (i *Ingestor) Start(ctx context.Context, program Program) error {
	if i.streamer == nil {
		logging.Warn("No stream source configured; staying in loading state")
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		return fmt.Errorf("ingest already subscribed")
	}

	cancel, err := i.streamer.Subscribe(ctx,
		func(records []visitor.Record) {
			program.Send(SnapshotMsg{Records: records})
		},
		func(err error) {
			logging.Error("Stream subscription error", "error", err)
			program.Send(StreamErrMsg{Err: err})
		},
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to visitor stream: %w", err)
	}
	i.cancel = cancel

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		<-ctx.Done()
		i.Stop()
	}()

	return nil
}

// Stop cancels the subscription synchronously. After it returns no
// further messages are sent. Safe to call more than once.
func (i *Ingestor) Stop() {
	i.mu.Lock()
	cancel := i.cancel
	i.cancel = nil
	i.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the teardown goroutine exits. Call after canceling
// the context passed to Start.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}
