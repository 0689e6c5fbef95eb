package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarn      = lipgloss.Color("214") // Amber
)

// Header style for the title/stats line.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// StatBadge style for one counter in the header.
var StatBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// SelectedRow style for the row under the cursor.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalRow style for ordinary rows.
var NormalRow = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// UnreadRow style marks records still flagged unread.
var UnreadRow = lipgloss.NewStyle().
	Foreground(colorWarn).
	Padding(0, 1)

// OnlineDot style for the presence marker.
var OnlineDot = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// DetailPane style for the expanded record view.
var DetailPane = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 2)

// DetailLabel style for field labels inside the detail pane.
var DetailLabel = lipgloss.NewStyle().
	Foreground(colorSecondary)

// InsightPanel style for the AI analysis banner.
var InsightPanel = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorHighlight).
	Padding(0, 2)

// InsightTitle style for the banner heading.
var InsightTitle = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// FilterActive style for the selected filter tab.
var FilterActive = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Bold(true).
	Padding(0, 1)

// FilterInactive style for the other filter tabs.
var FilterInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ToastSuccess style for success notifications.
var ToastSuccess = lipgloss.NewStyle().
	Foreground(lipgloss.Color("232")).
	Background(colorSuccess).
	Bold(true).
	Padding(0, 1)

// ToastInfo style for informational notifications.
var ToastInfo = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Bold(true).
	Padding(0, 1)

// HelpStyle for empty states and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)
