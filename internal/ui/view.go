package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/visitorhub/visitorhub/internal/derive"
	"github.com/visitorhub/visitorhub/internal/notify"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

// View renders the dashboard.
func (a App) View() string {
	if !a.ready {
		return "Starting visitorhub..."
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	if text, ok := a.insights.Insight(); ok {
		b.WriteString(a.renderInsight(text))
		b.WriteString("\n")
	} else if a.insights.Busy() {
		b.WriteString(InsightPanel.Width(a.width - 4).Render(
			a.spin.View() + " Analyzing visitors..."))
		b.WriteString("\n")
	}

	b.WriteString(a.search.View())
	b.WriteString("\n")
	b.WriteString(a.renderFilters())
	b.WriteString("\n\n")
	b.WriteString(a.renderRows())
	b.WriteString("\n")
	b.WriteString(a.renderStatus())

	return b.String()
}

// renderHeader shows the title and the live counters.
func (a App) renderHeader() string {
	stats := derive.ComputeStats(a.records.Records())
	badges := lipgloss.JoinHorizontal(lipgloss.Top,
		StatBadge.Render(fmt.Sprintf("Total %d", stats.Total)),
		StatBadge.Render(fmt.Sprintf("Online %d", stats.Online)),
		StatBadge.Render(fmt.Sprintf("Cards %d", stats.WithCard)),
		StatBadge.Render(fmt.Sprintf("Unread %d", stats.Unread)),
	)
	return Header.Render("visitorhub") + badges
}

func (a App) renderInsight(text string) string {
	body := InsightTitle.Render("Analysis") + "\n" + text +
		"\n" + HelpStyle.Padding(0).Render("x to dismiss")
	return InsightPanel.Width(a.width - 4).Render(body)
}

// renderFilters shows the filter tabs, active one highlighted.
func (a App) renderFilters() string {
	tabs := make([]string, 0, len(derive.Filters))
	for i, f := range derive.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == a.filter {
			tabs = append(tabs, FilterActive.Render(label))
		} else {
			tabs = append(tabs, FilterInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderRows lists the filtered records in snapshot order, with the
// detail pane expanded under the selected row.
func (a App) renderRows() string {
	if a.records.Loading() {
		return HelpStyle.Render(a.spin.View() + " Waiting for the first snapshot...")
	}

	view := a.visible()
	if len(view) == 0 {
		if a.records.Len() == 0 {
			return HelpStyle.Render("No visitors yet.")
		}
		return HelpStyle.Render("No visitors match the current view.")
	}

	selectedID, hasSelection := a.selector.Selected()

	var b strings.Builder
	for i, rec := range view {
		b.WriteString(a.renderRow(rec, i == a.cursor))
		b.WriteString("\n")
		if hasSelection && rec.ID == selectedID {
			b.WriteString(renderDetail(rec, a.width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderRow(rec visitor.Record, underCursor bool) string {
	presence := "  "
	if rec.Online {
		presence = OnlineDot.Render("● ")
	}

	flags := make([]string, 0, 2)
	if rec.HasCard() {
		flags = append(flags, "card")
	}
	if rec.HasOTP() {
		flags = append(flags, "otp")
	}

	line := fmt.Sprintf("%s%-24s %-28s %-18s %s",
		presence,
		truncate(rec.FullName(), 24),
		truncate(rec.Email, 28),
		truncate(rec.CurrentPage, 18),
		strings.Join(flags, " "),
	)

	switch {
	case underCursor:
		return SelectedRow.Render(line)
	case rec.Unread:
		return UnreadRow.Render(line)
	default:
		return NormalRow.Render(line)
	}
}

// renderDetail expands one record. The card number is masked and the
// CVV is withheld entirely.
func renderDetail(rec visitor.Record, width int) string {
	label := func(s string) string { return DetailLabel.Render(s) }

	lines := []string{
		label("ID       ") + rec.ID,
		label("Email    ") + rec.Email,
		label("Phone    ") + rec.Phone,
		label("Status   ") + rec.StatusLabel() + "  on " + rec.CurrentPage,
		label("Location ") + rec.Location(),
	}
	if rec.FullAddress != "" {
		lines = append(lines, label("Address  ")+rec.FullAddress)
	}
	if rec.HasCard() {
		lines = append(lines, label("Card     ")+maskCard(rec.CardNumber)+"  exp "+rec.Expiry)
	}
	if rec.HasOTP() {
		lines = append(lines, label("Last OTP ")+rec.LastOTP)
	}
	if len(rec.OTPAttempts) > 0 {
		lines = append(lines, label("Attempts ")+fmt.Sprintf("%d", len(rec.OTPAttempts)))
	}

	return DetailPane.Width(width - 6).Render(strings.Join(lines, "\n"))
}

// renderStatus shows the active toast, or key help when there is none.
func (a App) renderStatus() string {
	if toast := a.toasts.Current(); toast != nil {
		if toast.Kind == notify.Success {
			return ToastSuccess.Render(toast.Message)
		}
		return ToastInfo.Render(toast.Message)
	}
	if err := a.records.LastErr(); err != nil {
		return StatusBar.Render("stream error: showing last known data")
	}
	return StatusBar.Render("/ search  tab filter  enter details  m mark read  c copy  i analyze  q quit")
}

// maskCard keeps only the last four digits visible.
func maskCard(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("•", len(digits)-4) + digits[len(digits)-4:]
}

// truncate clips s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
