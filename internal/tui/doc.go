// Package tui is an interactive bubbletea host for a scene of views. Each
// key press drives one lifecycle operation on the selected view, and the
// lifecycle events published on the bus are shown as they happen.
package tui
