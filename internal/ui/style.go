// Package ui renders graph state as styled text for terminals. All render
// functions build strings; callers decide where to print them.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gsdkit/reqgraph/internal/requirement"
)

// Status palette. ANSI base colors so the output follows the user's
// terminal theme.
var (
	ColorReady      = lipgloss.Color("3") // yellow: unblocked, waiting to start
	ColorBlocked    = lipgloss.Color("1") // red
	ColorInProgress = lipgloss.Color("6") // cyan
	ColorDone       = lipgloss.Color("2") // green
	ColorMuted      = lipgloss.Color("8")
	ColorWarning    = lipgloss.Color("3")
	ColorError      = lipgloss.Color("1")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title      lipgloss.Style
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Ready      lipgloss.Style
	Blocked    lipgloss.Style
	InProgress lipgloss.Style
	Done       lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Valid      lipgloss.Style
	Card       lipgloss.Style
}{
	Title:      lipgloss.NewStyle().Bold(true),
	Bold:       lipgloss.NewStyle().Bold(true),
	Muted:      lipgloss.NewStyle().Foreground(ColorMuted),
	Ready:      lipgloss.NewStyle().Foreground(ColorReady),
	Blocked:    lipgloss.NewStyle().Foreground(ColorBlocked),
	InProgress: lipgloss.NewStyle().Foreground(ColorInProgress),
	Done:       lipgloss.NewStyle().Foreground(ColorDone),
	Warning:    lipgloss.NewStyle().Foreground(ColorWarning),
	Error:      lipgloss.NewStyle().Foreground(ColorError).Bold(true),
	Valid:      lipgloss.NewStyle().Foreground(ColorDone).Bold(true),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1),
}

// NodeChip returns a colored icon-plus-ID chip for one node. Stored status
// wins over derived readiness so done and in-progress nodes keep their
// color even inside a cycle layer.
func NodeChip(id string, status requirement.Status, ready, blocked bool) string {
	switch {
	case status == requirement.StatusDone:
		return Styles.Done.Render("✓ " + id)
	case status == requirement.StatusInProgress:
		return Styles.InProgress.Render("● " + id)
	case ready:
		return Styles.Ready.Render("○ " + id)
	case blocked:
		return Styles.Blocked.Render("⊘ " + id)
	default:
		return Styles.Muted.Render("◌ " + id)
	}
}

// StatusText returns the stored status colored for detail views.
func StatusText(status requirement.Status) string {
	switch status {
	case requirement.StatusDone:
		return Styles.Done.Render(string(status))
	case requirement.StatusInProgress:
		return Styles.InProgress.Render(string(status))
	case requirement.StatusBlocked:
		return Styles.Blocked.Render(string(status))
	case requirement.StatusReady:
		return Styles.Ready.Render(string(status))
	default:
		return Styles.Muted.Render(string(status))
	}
}
