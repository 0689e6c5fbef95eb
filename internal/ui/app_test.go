package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/visitorhub/visitorhub/internal/brain"
	"github.com/visitorhub/visitorhub/internal/derive"
	"github.com/visitorhub/visitorhub/internal/ingest"
	"github.com/visitorhub/visitorhub/internal/insight"
	"github.com/visitorhub/visitorhub/internal/notify"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

type stubProvider struct{}

func (stubProvider) Name() string    { return "stub" }
func (stubProvider) Available() bool { return true }
func (stubProvider) Generate(ctx context.Context, req brain.Request) (brain.Response, error) {
	return brain.Response{Content: "analysis"}, nil
}

func newTestApp() App {
	return New(Config{
		MarkRead: func(id string) tea.Cmd {
			return func() tea.Msg { return MarkReadDone{ID: id} }
		},
		CopyText: func(value, label string) tea.Cmd {
			return func() tea.Msg { return Copied{Label: label, OK: value != ""} }
		},
		Insight: insight.New(stubProvider{}),
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = a.Update(key(k))
		a = model.(App)
	}
	return a, cmd
}

func applySnapshot(t *testing.T, a App, records ...visitor.Record) App {
	t.Helper()
	model, _ := a.Update(ingest.SnapshotMsg{Records: records})
	return model.(App)
}

func TestSnapshotReplacesRecords(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a"}, visitor.Record{ID: "b"})
	a = applySnapshot(t, a, visitor.Record{ID: "c"})

	records := a.Records()
	if len(records) != 1 || records[0].ID != "c" {
		t.Errorf("a snapshot replaces everything, got %+v", records)
	}
}

func TestStreamErrorKeepsRecords(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a"})

	model, _ := a.Update(ingest.StreamErrMsg{Err: errors.New("listener dropped")})
	a = model.(App)

	if len(a.Records()) != 1 {
		t.Error("a stream error must not clear the visible data")
	}
}

func TestCursorClampsWhenViewShrinks(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a,
		visitor.Record{ID: "a"}, visitor.Record{ID: "b"}, visitor.Record{ID: "c"})
	a, _ = press(t, a, "j", "j")
	if a.Cursor() != 2 {
		t.Fatalf("expected cursor 2, got %d", a.Cursor())
	}

	a = applySnapshot(t, a, visitor.Record{ID: "a"})
	if a.Cursor() != 0 {
		t.Errorf("cursor must clamp to the new view, got %d", a.Cursor())
	}
}

func TestEnterTogglesSelection(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a"}, visitor.Record{ID: "b"})

	a, _ = press(t, a, "enter")
	if id, ok := a.selector.Selected(); !ok || id != "a" {
		t.Fatalf("expected a selected, got %q (%v)", id, ok)
	}

	a, _ = press(t, a, "enter")
	if _, ok := a.selector.Selected(); ok {
		t.Error("toggling the same row should clear the selection")
	}

	a, _ = press(t, a, "j", "enter")
	if id, _ := a.selector.Selected(); id != "b" {
		t.Errorf("expected b selected, got %q", id)
	}
}

func TestMarkReadOnlyFiresForUnread(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a", Unread: false})

	_, cmd := press(t, a, "m")
	if cmd != nil {
		t.Error("mark read on an already-read record should do nothing")
	}

	a = applySnapshot(t, a, visitor.Record{ID: "a", Unread: true})
	_, cmd = press(t, a, "m")
	if cmd == nil {
		t.Fatal("expected a mark-read command for an unread record")
	}
	done, ok := cmd().(MarkReadDone)
	if !ok || done.ID != "a" {
		t.Errorf("expected MarkReadDone for a, got %+v", done)
	}
}

func TestMarkReadSuccessShowsToast(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(MarkReadDone{ID: "a"})
	a = model.(App)

	toast := a.Toast()
	if toast == nil || toast.Kind != notify.Success {
		t.Errorf("expected a success toast, got %+v", toast)
	}
}

func TestMarkReadFailureIsSilent(t *testing.T) {
	a := newTestApp()

	model, cmd := a.Update(MarkReadDone{ID: "a", Err: errors.New("denied")})
	a = model.(App)

	if a.Toast() != nil {
		t.Error("a failed mark read must not raise a notification")
	}
	if cmd != nil {
		t.Error("no follow-up work on failure")
	}
}

func TestCopyEmptyIsSilent(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(Copied{Label: "Phone number", OK: false})
	a = model.(App)
	if a.Toast() != nil {
		t.Error("an empty copy is a silent no-op")
	}

	model, _ = a.Update(Copied{Label: "Phone number", OK: true})
	a = model.(App)
	toast := a.Toast()
	if toast == nil || toast.Kind != notify.Success {
		t.Errorf("expected a success toast after a copy, got %+v", toast)
	}
}

func TestStaleToastTimerDoesNotClearNewer(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(MarkReadDone{ID: "a"})
	a = model.(App)
	model, _ = a.Update(MarkReadDone{ID: "b"})
	a = model.(App)

	// The first toast's timer fires after it was replaced.
	model, _ = a.Update(toastExpired{token: notify.Token(1)})
	a = model.(App)
	if a.Toast() == nil {
		t.Fatal("a stale timer must not clear the current toast")
	}

	model, _ = a.Update(toastExpired{token: notify.Token(2)})
	a = model.(App)
	if a.Toast() != nil {
		t.Error("the owning timer should clear its toast")
	}
}

func TestInsightEmptySetShowsInfoToast(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a) // loaded, zero records

	a, cmd := press(t, a, "i")
	if cmd == nil {
		t.Fatal("expected a toast expiry command")
	}
	toast := a.Toast()
	if toast == nil || toast.Kind != notify.Info {
		t.Fatalf("expected an info toast, got %+v", toast)
	}
	if a.insights.Busy() {
		t.Error("an empty set must not start a request")
	}
}

func TestInsightSingleFlight(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a"})

	a, cmd := press(t, a, "i")
	if cmd == nil {
		t.Fatal("expected the insight command")
	}
	if !a.insights.Busy() {
		t.Fatal("coordinator should be requesting")
	}

	_, cmd = press(t, a, "i")
	if cmd != nil {
		t.Error("re-entry while busy must be silently ignored")
	}
}

func TestInsightDoneStoredUntilDismissed(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a, visitor.Record{ID: "a"})
	a, _ = press(t, a, "i")

	model, _ := a.Update(InsightDone{Text: "analysis"})
	a = model.(App)

	text, ok := a.insights.Insight()
	if !ok || text != "analysis" {
		t.Fatalf("expected the insight stored, got %q (%v)", text, ok)
	}

	// New snapshots do not clear it.
	a = applySnapshot(t, a, visitor.Record{ID: "b"})
	if _, ok := a.insights.Insight(); !ok {
		t.Error("snapshots must not clear the insight")
	}

	a, _ = press(t, a, "x")
	if _, ok := a.insights.Insight(); ok {
		t.Error("expected the insight dismissed")
	}
}

func TestFilterKeys(t *testing.T) {
	a := newTestApp()

	a, _ = press(t, a, "2")
	if a.Filter() != derive.FilterUnread {
		t.Errorf("expected unread filter, got %s", a.Filter())
	}

	a, _ = press(t, a, "tab")
	if a.Filter() != derive.FilterWithCard {
		t.Errorf("tab should advance to the next filter, got %s", a.Filter())
	}
}

func TestSearchNarrowsView(t *testing.T) {
	a := newTestApp()
	a = applySnapshot(t, a,
		visitor.Record{ID: "a", FirstName: "John", LastName: "Smith"},
		visitor.Record{ID: "b", FirstName: "Jane", LastName: "Doe"})

	a, _ = press(t, a, "/")
	if !a.search.Focused() {
		t.Fatal("expected the search input focused")
	}

	a, _ = press(t, a, "j", "o", "h")
	if got := a.visible(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only John visible, got %d records", len(got))
	}

	a, _ = press(t, a, "esc")
	if a.search.Focused() {
		t.Error("esc should blur the search input")
	}
	// The query itself survives the blur.
	if got := a.visible(); len(got) != 1 {
		t.Errorf("the query should stay applied after blur, got %d records", len(got))
	}
}
