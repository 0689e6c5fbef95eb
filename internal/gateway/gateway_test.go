package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/visitorhub/visitorhub/internal/source"
)

// mockUpdater records the last partial update it received.
type mockUpdater struct {
	err    error
	lastID string
	fields map[string]any
	calls  int
}

func (m *mockUpdater) Update(ctx context.Context, id string, fields map[string]any) error {
	m.calls++
	m.lastID = id
	m.fields = fields
	return m.err
}

func TestMarkReadSendsPartialUpdate(t *testing.T) {
	updater := &mockUpdater{}
	g := New(updater)

	if err := g.MarkRead(context.Background(), "v-1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if updater.lastID != "v-1" {
		t.Errorf("expected update on v-1, got %q", updater.lastID)
	}
	if len(updater.fields) != 1 {
		t.Fatalf("expected a single-field update, got %v", updater.fields)
	}
	if v, ok := updater.fields[source.FieldUnread]; !ok || v != false {
		t.Errorf("expected %s=false, got %v", source.FieldUnread, updater.fields)
	}
}

func TestMarkReadFailureReturnsError(t *testing.T) {
	failure := errors.New("permission denied")
	updater := &mockUpdater{err: failure}
	g := New(updater)

	err := g.MarkRead(context.Background(), "v-1")
	if !errors.Is(err, failure) {
		t.Errorf("expected the updater error back, got %v", err)
	}
	// No retry on failure.
	if updater.calls != 1 {
		t.Errorf("expected a single attempt, got %d", updater.calls)
	}
}

func TestMarkReadNoUpdater(t *testing.T) {
	g := New(nil)
	if err := g.MarkRead(context.Background(), "v-1"); err == nil {
		t.Error("expected an error with no updater configured")
	}
}

func TestCopyTextEmptyIsNoOp(t *testing.T) {
	g := New(&mockUpdater{})
	copied := false
	g.writeClipboard = func(string) error {
		copied = true
		return nil
	}

	if g.CopyText("", "Phone number") {
		t.Error("empty value should report false")
	}
	if copied {
		t.Error("empty value must not touch the clipboard")
	}
}

func TestCopyTextWritesValue(t *testing.T) {
	g := New(&mockUpdater{})
	var got string
	g.writeClipboard = func(s string) error {
		got = s
		return nil
	}

	if !g.CopyText("+1 555 0100", "Phone number") {
		t.Error("expected true for a non-empty value")
	}
	if got != "+1 555 0100" {
		t.Errorf("expected the value on the clipboard, got %q", got)
	}
}

func TestCopyTextClipboardErrorStillConfirms(t *testing.T) {
	g := New(&mockUpdater{})
	g.writeClipboard = func(string) error {
		return errors.New("no display")
	}

	if !g.CopyText("value", "Phone number") {
		t.Error("a clipboard error is logged, not surfaced")
	}
}
