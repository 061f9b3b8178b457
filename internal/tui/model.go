package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/viewkit/internal/config"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/host"
	"github.com/Iron-Ham/viewkit/internal/util"
)

// binding is one entry of the key table shown in the help bar.
type binding struct {
	keys        []string
	description string
}

var bindings = []binding{
	{[]string{"up", "k"}, "prev"},
	{[]string{"down", "j"}, "next"},
	{[]string{"l"}, "load"},
	{[]string{"s"}, "show"},
	{[]string{"h"}, "hide"},
	{[]string{"H"}, "hide now"},
	{[]string{"u"}, "unload"},
	{[]string{"U"}, "unload+destroy"},
	{[]string{"x"}, "destroy object"},
	{[]string{"q", "ctrl+c"}, "quit"},
}

// Messages

type tickMsg time.Time

// loadDoneMsg reports the end of a Load started from the UI.
type loadDoneMsg struct {
	viewID string
	err    error
}

// configReloadedMsg carries a configuration re-read after the file changed.
type configReloadedMsg struct {
	cfg *config.Config
}

// Model is the bubbletea model driving a scene of views.
type Model struct {
	ctx     context.Context
	scene   *host.Scene
	log     *eventLog
	refresh time.Duration

	selected int
	loading  map[string]bool

	width, height int
	infoMessage   string
	errorMessage  string
	quitting      bool
}

// NewModel creates a model for scene. Lifecycle events published on bus are
// shown in the event log.
func NewModel(ctx context.Context, scene *host.Scene, bus *event.Bus, cfg config.TUIConfig) Model {
	refresh := cfg.RefreshInterval()
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}
	log := newEventLog(cfg.EventLogLines)
	if bus != nil {
		bus.SubscribeAll(log.add)
	}
	return Model{
		ctx:     ctx,
		scene:   scene,
		log:     log,
		refresh: refresh,
		loading: make(map[string]bool),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Delayed hides complete on timers; redraw to pick them up.
		return m, m.tick()

	case loadDoneMsg:
		delete(m.loading, msg.viewID)
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("load %s: %v", msg.viewID, msg.err)
		} else {
			m.infoMessage = fmt.Sprintf("%s loaded", msg.viewID)
		}
		return m, nil

	case configReloadedMsg:
		m.log.setLimit(msg.cfg.TUI.EventLogLines)
		m.refresh = msg.cfg.TUI.RefreshInterval()
		m.infoMessage = "configuration reloaded"
		return m, nil
	}

	return m, nil
}

// handleKeypress processes keyboard input
func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.infoMessage = ""
	m.errorMessage = ""

	entries := m.scene.Entries()
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(entries)-1 {
			m.selected++
		}
		return m, nil
	}

	if len(entries) == 0 {
		return m, nil
	}
	entry := entries[m.selected]
	v := entry.View
	id := v.ID()

	var err error
	switch msg.String() {
	case "l":
		if m.loading[id] {
			m.infoMessage = fmt.Sprintf("%s is already loading", id)
			return m, nil
		}
		m.loading[id] = true
		ctx := m.ctx
		return m, func() tea.Msg {
			return loadDoneMsg{viewID: id, err: v.Load(ctx)}
		}
	case "s":
		err = v.Show()
	case "h":
		err = v.Hide(false)
	case "H":
		err = v.Hide(true)
	case "u":
		v.Unload(false)
	case "U":
		v.Unload(true)
	case "x":
		err = m.scene.DestroyObject(id)
	default:
		return m, nil
	}

	if err != nil {
		m.errorMessage = err.Error()
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("viewkit"))
	b.WriteString("\n")

	entries := m.scene.Entries()
	if len(entries) == 0 {
		b.WriteString(mutedStyle.Render("no views configured"))
		b.WriteString("\n")
	}
	for i, entry := range entries {
		b.WriteString(util.Truncate(m.renderEntry(entry, i == m.selected), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	b.WriteString("\n")

	if m.errorMessage != "" {
		b.WriteString(util.Truncate(errorStyle.Render(m.errorMessage), m.width))
		b.WriteString("\n")
	} else if m.infoMessage != "" {
		b.WriteString(util.Truncate(infoStyle.Render(m.infoMessage), m.width))
		b.WriteString("\n")
	}

	b.WriteString(renderHelp())
	return b.String()
}

func (m Model) renderEntry(entry *host.Entry, selected bool) string {
	v := entry.View
	name := fmt.Sprintf("%-12s", v.ID())
	if selected {
		name = selectedStyle.Render(name)
	}

	details := []string{}
	if c := v.ContainerID(); c != "" {
		details = append(details, "in "+c)
	}
	if v.HidePending() {
		details = append(details, "hiding")
	}
	if n := v.ListenerCount(); n > 0 {
		details = append(details, fmt.Sprintf("%d listeners", n))
	}
	if n := len(entry.Panel.Acquired()); n > 0 {
		details = append(details, fmt.Sprintf("%d resources", n))
	}
	if entry.Object.Destroyed() {
		details = append(details, "destroyed")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		name, " ",
		stateBadge(v.State()),
		mutedStyle.Render(strings.Join(details, ", ")),
	)
}

func (m Model) renderEvents() string {
	lines := m.log.snapshot()
	if len(lines) == 0 {
		lines = []string{mutedStyle.Render("no events yet")}
	}
	// Border and padding take two columns on each side.
	if m.width > 4 {
		lines = util.FitLines(lines, m.width-4)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderHelp() string {
	parts := make([]string, 0, len(bindings))
	for _, bnd := range bindings {
		parts = append(parts, helpKeyStyle.Render(bnd.keys[0])+" "+mutedStyle.Render(bnd.description))
	}
	return strings.Join(parts, "  ")
}
