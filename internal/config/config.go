package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/viewkit/internal/host"
	"github.com/Iron-Ham/viewkit/internal/view"
)

// Config represents the complete viewkit configuration
type Config struct {
	View     ViewDefaults   `mapstructure:"view" yaml:"view"`
	Views    []ViewConfig   `mapstructure:"views" yaml:"views"`
	Executor ExecutorConfig `mapstructure:"executor" yaml:"executor"`
	TUI      TUIConfig      `mapstructure:"tui" yaml:"tui"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ViewDefaults apply to every view that does not override them
type ViewDefaults struct {
	// HideDelayMs is how long a non-instant hide keeps the view visible (default: 5000, 0 = no delay)
	HideDelayMs int `mapstructure:"hide_delay_ms" yaml:"hide_delay_ms"`
	// ShowOnLoad shows views as soon as they finish loading (default: false)
	ShowOnLoad bool `mapstructure:"show_on_load" yaml:"show_on_load"`
}

// ViewConfig declares one view of the demo scene
type ViewConfig struct {
	// ID identifies the view in logs, events and commands
	ID string `mapstructure:"id" yaml:"id"`
	// ContainerID is an opaque placement hint handed to the host
	ContainerID string `mapstructure:"container_id" yaml:"container_id,omitempty"`
	// ShowOnLoad overrides view.show_on_load when set
	ShowOnLoad *bool `mapstructure:"show_on_load" yaml:"show_on_load,omitempty"`
	// HideDelayMs overrides view.hide_delay_ms when set
	HideDelayMs *int `mapstructure:"hide_delay_ms" yaml:"hide_delay_ms,omitempty"`
	// Background is the asset bundle the panel loads first (required)
	Background string `mapstructure:"background" yaml:"background" asset:"bundle"`
	// Icons are extra asset bundles
	Icons []string `mapstructure:"icons" yaml:"icons,omitempty" asset:"bundle,optional"`
	// Stages are the timed setup steps the panel runs after loading its bundles
	Stages []StageConfig `mapstructure:"stages" yaml:"stages,omitempty"`
	// FailStage makes the named stage fail, for trying out error handling
	FailStage string `mapstructure:"fail_stage" yaml:"fail_stage,omitempty"`
}

// StageConfig is one timed setup step
type StageConfig struct {
	Name       string `mapstructure:"name" yaml:"name"`
	DurationMs int    `mapstructure:"duration_ms" yaml:"duration_ms"`
}

// ExecutorConfig controls the lifecycle hook executor
type ExecutorConfig struct {
	// Workers bounds concurrent hooks per order group (default: 4)
	Workers int `mapstructure:"workers" yaml:"workers"`
	// HookTimeoutMs bounds each hook (default: 0 = no timeout)
	HookTimeoutMs int `mapstructure:"hook_timeout_ms" yaml:"hook_timeout_ms"`
	// Async runs hooks without blocking the view that dispatched them (default: false)
	Async bool `mapstructure:"async" yaml:"async"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// RefreshMs is how often the TUI redraws to pick up timer-driven changes (default: 100)
	RefreshMs int `mapstructure:"refresh_ms" yaml:"refresh_ms"`
	// EventLogLines is how many recent lifecycle events are shown (default: 8)
	EventLogLines int `mapstructure:"event_log_lines" yaml:"event_log_lines"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where viewkit.log is written; empty means stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		View: ViewDefaults{
			HideDelayMs: int(view.DefaultHideDelay / time.Millisecond),
			ShowOnLoad:  false,
		},
		Views: []ViewConfig{
			{
				ID:          "hud",
				ContainerID: "overlay",
				ShowOnLoad:  boolPtr(true),
				Background:  "ui/hud",
			},
			{
				ID:          "inventory",
				ContainerID: "modal",
				Background:  "ui/inventory",
				Icons:       []string{"ui/icons"},
				Stages: []StageConfig{
					{Name: "download", DurationMs: 800},
					{Name: "decode", DurationMs: 200},
				},
			},
			{
				ID:          "toast",
				ContainerID: "overlay",
				HideDelayMs: intPtr(1500),
				Background:  "ui/toast",
			},
		},
		Executor: ExecutorConfig{
			Workers:       4,
			HookTimeoutMs: 0, // No timeout by default
			Async:         false,
		},
		TUI: TUIConfig{
			RefreshMs:     100,
			EventLogLines: 8,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// HookTimeout returns the hook timeout as a time.Duration (0 means disabled)
func (c *ExecutorConfig) HookTimeout() time.Duration {
	return time.Duration(c.HookTimeoutMs) * time.Millisecond
}

// RefreshInterval returns the TUI refresh interval as a time.Duration
func (c *TUIConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMs) * time.Millisecond
}

// Spec resolves a view declaration against the defaults into what the
// host needs to spawn it.
func (v ViewConfig) Spec(defaults ViewDefaults) host.ViewSpec {
	showOnLoad := defaults.ShowOnLoad
	if v.ShowOnLoad != nil {
		showOnLoad = *v.ShowOnLoad
	}
	delayMs := defaults.HideDelayMs
	if v.HideDelayMs != nil {
		delayMs = *v.HideDelayMs
	}
	// The view treats a zero delay as "use the default"; negative means none.
	hideDelay := time.Duration(delayMs) * time.Millisecond
	if delayMs == 0 {
		hideDelay = -1
	}

	stages := make([]host.Stage, 0, len(v.Stages))
	for _, s := range v.Stages {
		stages = append(stages, host.Stage{Name: s.Name, Duration: time.Duration(s.DurationMs) * time.Millisecond})
	}

	return host.ViewSpec{
		ID:          v.ID,
		ContainerID: v.ContainerID,
		ShowOnLoad:  showOnLoad,
		HideDelay:   hideDelay,
		Panel: host.PanelConfig{
			Background: v.Background,
			Icons:      v.Icons,
			Stages:     stages,
			FailStage:  v.FailStage,
		},
	}
}

// ViewSpecs resolves every configured view.
func (c *Config) ViewSpecs() []host.ViewSpec {
	specs := make([]host.ViewSpec, 0, len(c.Views))
	for _, v := range c.Views {
		specs = append(specs, v.Spec(c.View))
	}
	return specs
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// View defaults
	viper.SetDefault("view.hide_delay_ms", defaults.View.HideDelayMs)
	viper.SetDefault("view.show_on_load", defaults.View.ShowOnLoad)

	// Executor defaults
	viper.SetDefault("executor.workers", defaults.Executor.Workers)
	viper.SetDefault("executor.hook_timeout_ms", defaults.Executor.HookTimeoutMs)
	viper.SetDefault("executor.async", defaults.Executor.Async)

	// TUI defaults
	viper.SetDefault("tui.refresh_ms", defaults.TUI.RefreshMs)
	viper.SetDefault("tui.event_log_lines", defaults.TUI.EventLogLines)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it.
// The demo views are used when the configuration declares none.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Views) == 0 {
		cfg.Views = Default().Views
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "viewkit")
	}
	// Fall back to ~/.config/viewkit
	home, err := os.UserHomeDir()
	if err != nil {
		return ".viewkit"
	}
	return filepath.Join(home, ".config", "viewkit")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
