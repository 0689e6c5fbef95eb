package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/visitorhub/visitorhub/internal/derive"
	"github.com/visitorhub/visitorhub/internal/ingest"
	"github.com/visitorhub/visitorhub/internal/insight"
	"github.com/visitorhub/visitorhub/internal/notify"
	"github.com/visitorhub/visitorhub/internal/selection"
	"github.com/visitorhub/visitorhub/internal/store"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

// Config wires the App to its collaborators. The App never talks to the
// remote store or the clipboard directly - it receives data via messages
// and issues writes through injected command factories.
type Config struct {
	// MarkRead returns a Cmd issuing the remote partial update.
	MarkRead func(id string) tea.Cmd

	// CopyText returns a Cmd copying a value to the clipboard.
	CopyText func(value, label string) tea.Cmd

	// Insight is the single-flight insight coordinator.
	Insight *insight.Coordinator
}

// App is the root Bubble Tea model.
type App struct {
	markRead func(id string) tea.Cmd
	copyText func(value, label string) tea.Cmd

	records  *store.RecordStore
	selector selection.Selector
	toasts   notify.Center
	insights *insight.Coordinator

	search textinput.Model
	spin   spinner.Model
	filter derive.Filter

	cursor int
	width  int
	height int
	ready  bool
}

// New creates the App in its loading state.
func New(cfg Config) App {
	search := textinput.New()
	search.Placeholder = "Search name, email, phone, or id"
	search.Prompt = "/ "
	search.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	insights := cfg.Insight
	if insights == nil {
		insights = insight.New(nil)
	}

	return App{
		markRead: cfg.MarkRead,
		copyText: cfg.CopyText,
		records:  store.New(),
		insights: insights,
		search:   search,
		spin:     spin,
		filter:   derive.FilterAll,
	}
}

// Init starts the loading spinner.
func (a App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = msg.Width - 8
		a.ready = true
		return a, nil

	case ingest.SnapshotMsg:
		// Full replace: nothing from the previous snapshot survives.
		a.records.Apply(msg.Records)
		a.clampCursor()
		return a, nil

	case ingest.StreamErrMsg:
		// Logged upstream. Keep showing the last known data.
		a.records.Fail(msg.Err)
		return a, nil

	case MarkReadDone:
		if msg.Err != nil {
			// Fire-and-forget: failure was logged, nothing to show.
			return a, nil
		}
		return a, a.toast("Visitor updated", notify.Success)

	case Copied:
		if !msg.OK {
			return a, nil
		}
		return a, a.toast(msg.Label+" copied to clipboard", notify.Success)

	case InsightDone:
		a.insights.Complete(msg.Text)
		return a, nil

	case toastExpired:
		a.toasts.Expire(msg.token)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKey processes keyboard input.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input swallows everything while focused.
	if a.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			a.search.Blur()
			return a, nil
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			a.clampCursor()
			return a, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "/":
		a.search.Focus()
		return a, textinput.Blink

	case "esc":
		if _, ok := a.selector.Selected(); ok {
			a.selector.Clear()
		} else if a.search.Value() != "" {
			a.search.SetValue("")
			a.clampCursor()
		}
		return a, nil

	case "j", "down":
		if a.cursor < len(a.visible())-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if n := len(a.visible()); n > 0 {
			a.cursor = n - 1
		}
		return a, nil

	case "enter":
		if rec, ok := a.current(); ok {
			a.selector.Toggle(rec.ID)
		}
		return a, nil

	case "m":
		rec, ok := a.current()
		if !ok || !rec.Unread || a.markRead == nil {
			return a, nil
		}
		// No optimistic local change: the row stays unread until the
		// next snapshot says otherwise.
		return a, a.markRead(rec.ID)

	case "c":
		rec, ok := a.current()
		if !ok || a.copyText == nil {
			return a, nil
		}
		return a, a.copyText(rec.Phone, "Phone number")

	case "i":
		return a.requestInsight()

	case "x":
		a.insights.Dismiss()
		return a, nil

	case "tab":
		a.filter = nextFilter(a.filter)
		a.clampCursor()
		return a, nil

	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		a.filter = derive.Filters[idx]
		a.clampCursor()
		return a, nil
	}

	return a, nil
}

// requestInsight drives the coordinator's entry point. Re-entry while
// busy is silently ignored; an empty record set raises an informational
// toast instead of a provider call.
func (a App) requestInsight() (tea.Model, tea.Cmd) {
	job, err := a.insights.Begin(a.records.Records())
	switch {
	case errors.Is(err, insight.ErrNoRecords):
		return a, a.toast("No visitors to analyze yet", notify.Info)
	case errors.Is(err, insight.ErrBusy):
		return a, nil
	case err != nil:
		return a, a.toast("Could not start analysis", notify.Info)
	}

	return a, tea.Batch(a.spin.Tick, func() tea.Msg {
		return InsightDone{Text: job.Run(context.Background())}
	})
}

// toast replaces the current notification and schedules its expiry. The
// token keeps a replaced toast's timer from clearing its successor.
func (a *App) toast(message string, kind notify.Kind) tea.Cmd {
	token := a.toasts.Notify(message, kind)
	return tea.Tick(notify.TTL, func(time.Time) tea.Msg {
		return toastExpired{token: token}
	})
}

// visible is the derived list view: search then filter, order preserved.
func (a App) visible() []visitor.Record {
	return derive.FilteredView(a.records.Records(), a.search.Value(), a.filter)
}

// current returns the record under the cursor.
func (a App) current() (visitor.Record, bool) {
	view := a.visible()
	if a.cursor < 0 || a.cursor >= len(view) {
		return visitor.Record{}, false
	}
	return view[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func nextFilter(f derive.Filter) derive.Filter {
	for i, cand := range derive.Filters {
		if cand == f {
			return derive.Filters[(i+1)%len(derive.Filters)]
		}
	}
	return derive.FilterAll
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Filter returns the active filter (for testing).
func (a App) Filter() derive.Filter {
	return a.filter
}

// Records returns the mirrored record set (for testing).
func (a App) Records() []visitor.Record {
	return a.records.Records()
}

// Toast returns the visible notification, or nil (for testing).
func (a App) Toast() *notify.Notification {
	return a.toasts.Current()
}
