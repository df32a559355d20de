// Package render paints boards and task lists for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(28)

	collapsedStyle = columnStyle.Width(12)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	draftStyle   = lipgloss.NewStyle().Foreground(colorWarning).Italic(true)
	draggedStyle = lipgloss.NewStyle().Reverse(true)

	statusStyles = map[string]lipgloss.Style{
		"Not Started": lipgloss.NewStyle().Foreground(colorMuted),
		"In Progress": lipgloss.NewStyle().Foreground(colorWarning),
		"Completed":   lipgloss.NewStyle().Foreground(colorSuccess),
	}
)

func statusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return mutedStyle
}
