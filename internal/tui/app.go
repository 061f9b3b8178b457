package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/viewkit/internal/config"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/host"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
}

// New creates a new TUI application
func New(ctx context.Context, scene *host.Scene, bus *event.Bus, cfg config.TUIConfig) *App {
	return &App{model: NewModel(ctx, scene, bus, cfg)}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// Reload hands a re-read configuration to the running program. It must not
// be called from inside the program's update loop.
func (a *App) Reload(cfg *config.Config) {
	if a.program != nil {
		a.program.Send(configReloadedMsg{cfg: cfg})
	}
}
