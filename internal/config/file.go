package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/viewkit/internal/errors"
)

const fileHeader = `# viewkit configuration
#
# Environment variables override any value: VIEWKIT_<SECTION>_<KEY>,
# e.g. VIEWKIT_EXECUTOR_WORKERS=8 or VIEWKIT_VIEW_HIDE_DELAY_MS=2000.

`

// WriteDefault writes the default configuration as YAML to path on fs. An
// existing file is left alone unless force is set.
func WriteDefault(fs afero.Fs, path string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists && !force {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, append([]byte(fileHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ReadFile decodes a YAML config file from fs without consulting viper.
// Missing sections keep their default values.
func ReadFile(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	cfg.Views = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(cfg.Views) == 0 {
		cfg.Views = Default().Views
	}
	return cfg, nil
}

// keyKind is the value type of a settable key.
type keyKind int

const (
	kindInt keyKind = iota
	kindBool
	kindString
)

// settableKeys lists the keys accepted by Coerce.
var settableKeys = map[string]keyKind{
	"view.hide_delay_ms":       kindInt,
	"view.show_on_load":        kindBool,
	"executor.workers":         kindInt,
	"executor.hook_timeout_ms": kindInt,
	"executor.async":           kindBool,
	"tui.refresh_ms":           kindInt,
	"tui.event_log_lines":      kindInt,
	"logging.enabled":          kindBool,
	"logging.level":            kindString,
	"logging.dir":              kindString,
}

// SettableKeys returns the keys accepted by Coerce, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Coerce converts a raw command-line value to the type expected by key and
// checks it against the same rules Validate applies.
func Coerce(key, raw string) (any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, errors.NewNotFoundError("configuration key", key)
	}

	var value any
	var err error
	switch kind {
	case kindInt:
		value, err = cast.ToIntE(strings.TrimSpace(raw))
	case kindBool:
		value, err = cast.ToBoolE(strings.TrimSpace(raw))
	default:
		value, err = cast.ToStringE(raw)
	}
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithField(key).WithValue(raw)
	}

	// Apply the value to a default config and reuse the validator.
	cfg := Default()
	apply(cfg, key, value)
	for _, verr := range cfg.Validate() {
		if verr.Field == key {
			return nil, errors.NewValidationError(verr.Message).WithField(key).WithValue(raw)
		}
	}
	return value, nil
}

func apply(cfg *Config, key string, value any) {
	switch key {
	case "view.hide_delay_ms":
		cfg.View.HideDelayMs = value.(int)
	case "view.show_on_load":
		cfg.View.ShowOnLoad = value.(bool)
	case "executor.workers":
		cfg.Executor.Workers = value.(int)
	case "executor.hook_timeout_ms":
		cfg.Executor.HookTimeoutMs = value.(int)
	case "executor.async":
		cfg.Executor.Async = value.(bool)
	case "tui.refresh_ms":
		cfg.TUI.RefreshMs = value.(int)
	case "tui.event_log_lines":
		cfg.TUI.EventLogLines = value.(int)
	case "logging.enabled":
		cfg.Logging.Enabled = value.(bool)
	case "logging.level":
		cfg.Logging.Level = value.(string)
	case "logging.dir":
		cfg.Logging.Dir = value.(string)
	}
}
