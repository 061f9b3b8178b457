// Package util provides small terminal text helpers shared by the CLI and TUI.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most width visual columns, ending it with
// Ellipsis when anything was cut. ANSI escape sequences and wide characters
// are measured the way the terminal renders them. A non-positive width
// leaves s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width <= lipgloss.Width(Ellipsis) {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// FitLines truncates every line to width.
func FitLines(lines []string, width int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Truncate(line, width)
	}
	return out
}
