package cmd

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/viewkit/internal/config"
	"github.com/Iron-Ham/viewkit/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Drive the configured views interactively",
	Long: `Open a terminal UI listing every configured view. Select a view and use
the keys shown at the bottom of the screen to load, show, hide and unload it.

Edits to the config file are picked up while the TUI is running. Logs go to
viewkit.log in the logging directory, or in the config directory when none
is set.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// stderr belongs to the terminal UI
	logger, err := newLogger(cfg.Logging, config.ConfigDir())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	rt, err := newRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.New(cmd.Context(), rt.scene, rt.bus, cfg.TUI)

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				return
			}
			reloaded, err := config.Load()
			if err != nil {
				logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
				return
			}
			logger.Info("config reloaded", "file", e.Name)
			app.Reload(reloaded)
		})
		viper.WatchConfig()
	}

	return app.Run()
}
