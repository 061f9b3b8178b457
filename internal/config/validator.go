package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Iron-Ham/viewkit/internal/assetref"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "views[0].hide_delay_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// viewIDRegex validates view and container identifiers
var viewIDRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Bounds for numeric settings
const (
	maxHideDelayMs = 60_000
	maxStageMs     = 600_000
	maxWorkers     = 64
	minRefreshMs   = 16
	maxEventLines  = 100
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate view defaults
	errors = append(errors, c.validateViewDefaults()...)

	// Validate view declarations
	errors = append(errors, c.validateViews()...)

	// Validate Executor config
	errors = append(errors, c.validateExecutor()...)

	// Validate TUI config
	errors = append(errors, c.validateTUI()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateViewDefaults() []ValidationError {
	return validateHideDelay("view.hide_delay_ms", c.View.HideDelayMs)
}

func validateHideDelay(field string, ms int) []ValidationError {
	if ms < 0 {
		return []ValidationError{{Field: field, Value: ms, Message: "must be non-negative"}}
	}
	if ms > maxHideDelayMs {
		return []ValidationError{{Field: field, Value: ms, Message: fmt.Sprintf("exceeds maximum of %dms", maxHideDelayMs)}}
	}
	return nil
}

// validateViews validates each declared view and checks IDs are unique
func (c *Config) validateViews() []ValidationError {
	var errors []ValidationError

	seen := make(map[string]int)
	for i, v := range c.Views {
		prefix := fmt.Sprintf("views[%d]", i)

		if !viewIDRegex.MatchString(v.ID) {
			errors = append(errors, ValidationError{
				Field:   prefix + ".id",
				Value:   v.ID,
				Message: "must start with a letter and contain only letters, digits, hyphens or underscores",
			})
		} else if first, dup := seen[v.ID]; dup {
			errors = append(errors, ValidationError{
				Field:   prefix + ".id",
				Value:   v.ID,
				Message: fmt.Sprintf("duplicates views[%d].id", first),
			})
		} else {
			seen[v.ID] = i
		}

		if v.ContainerID != "" && !viewIDRegex.MatchString(v.ContainerID) {
			errors = append(errors, ValidationError{
				Field:   prefix + ".container_id",
				Value:   v.ContainerID,
				Message: "must start with a letter and contain only letters, digits, hyphens or underscores",
			})
		}

		if v.HideDelayMs != nil {
			errors = append(errors, validateHideDelay(prefix+".hide_delay_ms", *v.HideDelayMs)...)
		}

		errors = append(errors, validateAssets(prefix, v)...)
		errors = append(errors, validateStages(prefix, v)...)
	}

	return errors
}

// validateAssets reports required asset references left empty
func validateAssets(prefix string, v ViewConfig) []ValidationError {
	refs, err := assetref.Scan(v)
	if err != nil {
		return []ValidationError{{Field: prefix, Value: v.ID, Message: err.Error()}}
	}

	var errors []ValidationError
	for _, ref := range refs {
		if ref.Bundle != "" || ref.Optional {
			continue
		}
		// Ref paths look like "ViewConfig.Background"
		field := ref.Path[strings.LastIndex(ref.Path, ".")+1:]
		errors = append(errors, ValidationError{
			Field:   prefix + "." + strings.ToLower(field),
			Value:   ref.Bundle,
			Message: "asset bundle reference is required",
		})
	}
	return errors
}

func validateStages(prefix string, v ViewConfig) []ValidationError {
	var errors []ValidationError

	var names []string
	for j, s := range v.Stages {
		field := fmt.Sprintf("%s.stages[%d]", prefix, j)
		if s.Name == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   s.Name,
				Message: "is required",
			})
		}
		if s.DurationMs < 0 || s.DurationMs > maxStageMs {
			errors = append(errors, ValidationError{
				Field:   field + ".duration_ms",
				Value:   s.DurationMs,
				Message: fmt.Sprintf("must be between 0 and %d", maxStageMs),
			})
		}
		names = append(names, s.Name)
	}

	if v.FailStage != "" && !slices.Contains(names, v.FailStage) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".fail_stage",
			Value:   v.FailStage,
			Message: "must name one of the view's stages",
		})
	}

	return errors
}

// validateExecutor validates the ExecutorConfig
func (c *Config) validateExecutor() []ValidationError {
	var errors []ValidationError

	if c.Executor.Workers < 1 || c.Executor.Workers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "executor.workers",
			Value:   c.Executor.Workers,
			Message: fmt.Sprintf("must be between 1 and %d", maxWorkers),
		})
	}

	if c.Executor.HookTimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "executor.hook_timeout_ms",
			Value:   c.Executor.HookTimeoutMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.RefreshMs < minRefreshMs {
		errors = append(errors, ValidationError{
			Field:   "tui.refresh_ms",
			Value:   c.TUI.RefreshMs,
			Message: fmt.Sprintf("must be at least %d", minRefreshMs),
		})
	}

	if c.TUI.EventLogLines < 0 || c.TUI.EventLogLines > maxEventLines {
		errors = append(errors, ValidationError{
			Field:   "tui.event_log_lines",
			Value:   c.TUI.EventLogLines,
			Message: fmt.Sprintf("must be between 0 and %d", maxEventLines),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
