package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/viewkit/internal/view"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on dark backgrounds
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	greenColor   = lipgloss.Color("#10B981") // Green
	amberColor   = lipgloss.Color("#F59E0B") // Amber
	redColor     = lipgloss.Color("#F87171") // Red
	blueColor    = lipgloss.Color("#60A5FA") // Blue
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	textColor    = lipgloss.Color("#F9FAFB") // Light text
	borderColor  = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle = lipgloss.NewStyle().Foreground(redColor).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(greenColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Foreground(textColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
)

// stateColor maps a lifecycle state to its badge color.
func stateColor(s view.State) lipgloss.Color {
	switch s {
	case view.StateLoading:
		return amberColor
	case view.StateActiveHidden:
		return blueColor
	case view.StateActiveVisible:
		return greenColor
	default:
		return mutedColor
	}
}

// stateBadge renders a colored badge for s.
func stateBadge(s view.State) string {
	return badgeStyle.Background(stateColor(s)).Render(s.String())
}
