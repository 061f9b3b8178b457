// Package errors provides centralized error definitions and error handling utilities
// for viewkit. It defines view lifecycle errors, semantic error types, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Lifecycle errors are raised by the view controller:
//   - InvalidStateError: an operation was invoked in a state that does not allow it
//     (showing or hiding a view that has not been loaded, loading a destroyed view)
//   - SetupError: the Setup extension point of a view failed during Load
//
// Semantic errors represent common error conditions around the core:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input
//   - TimeoutError: operation timed out
//
// # Usage
//
//	err := errors.NewInvalidStateError("show", "attempting to show a view that has not been loaded").
//	    WithViewID("dialog")
//
//	if errors.Is(err, errors.ErrNotLoaded) { ... }
//
//	var setupErr *errors.SetupError
//	if errors.As(err, &setupErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Lifecycle sentinel errors
var (
	// ErrInvalidState indicates an operation was invoked in a state that forbids it.
	ErrInvalidState = New("invalid view state")
	// ErrNotLoaded indicates the view has not completed Load.
	ErrNotLoaded = New("view has not been loaded")
	// ErrDestroyed indicates the view's visual object has been destroyed.
	ErrDestroyed = New("view has been destroyed")
	// ErrSetupFailed indicates the Setup extension point returned an error.
	ErrSetupFailed = New("view setup failed")
	// ErrSetupPanicked indicates the Setup extension point panicked.
	ErrSetupPanicked = New("view setup panicked")
	// ErrLoadSuperseded indicates a Load was overtaken by an Unload or a newer Load
	// while its Setup was still running.
	ErrLoadSuperseded = New("view load superseded")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ViewkitError is the base interface for all viewkit errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type ViewkitError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Lifecycle Errors
// -----------------------------------------------------------------------------

// InvalidStateError is raised when a lifecycle operation is invoked while the
// view is in a state that does not permit it. It is a precondition violation
// on the caller's side, never a transient failure.
//
// Example:
//
//	err := errors.NewInvalidStateError("hide", "attempting to hide a view that has not been loaded")
//	err = err.WithViewID("dialog")
//	fmt.Println(err) // "invalid state [view=dialog, op=hide]: attempting to hide a view that has not been loaded: view has not been loaded"
type InvalidStateError struct {
	baseError
	ViewID string
	Op     string
}

// NewInvalidStateError creates a new InvalidStateError for op. The cause
// defaults to ErrNotLoaded.
func NewInvalidStateError(op, message string) *InvalidStateError {
	return &InvalidStateError{
		baseError: baseError{
			message:    message,
			cause:      ErrNotLoaded,
			severity:   SeverityError,
			retryable:  false,
			userFacing: false,
		},
		Op: op,
	}
}

// WithViewID adds a view ID to the error context.
func (e *InvalidStateError) WithViewID(id string) *InvalidStateError {
	e.ViewID = id
	return e
}

// WithCause replaces the underlying cause.
func (e *InvalidStateError) WithCause(cause error) *InvalidStateError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *InvalidStateError) Error() string {
	var parts []string
	if e.ViewID != "" {
		parts = append(parts, fmt.Sprintf("view=%s", e.ViewID))
	}
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	prefix := "invalid state"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("invalid state [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *InvalidStateError) Is(target error) bool {
	if _, ok := target.(*InvalidStateError); ok {
		return true
	}
	if target == ErrInvalidState {
		return true
	}
	return e.baseError.Is(target)
}

// SetupError wraps a failure surfaced by a view's Setup extension point.
// The view stays inactive; the controller never retries Setup on its own.
//
// Example:
//
//	err := errors.NewSetupError("loading textures", cause).WithViewID("inventory")
type SetupError struct {
	baseError
	ViewID string
}

// NewSetupError creates a new SetupError.
func NewSetupError(message string, cause error) *SetupError {
	return &SetupError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithViewID adds a view ID to the error context.
func (e *SetupError) WithViewID(id string) *SetupError {
	e.ViewID = id
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *SetupError) WithRetryable(r bool) *SetupError {
	e.retryable = r
	return e
}

// WithSeverity sets the error severity.
func (e *SetupError) WithSeverity(s Severity) *SetupError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SetupError) Error() string {
	prefix := "setup error"
	if e.ViewID != "" {
		prefix = fmt.Sprintf("setup error [view=%s]", e.ViewID)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SetupError) Is(target error) bool {
	if _, ok := target.(*SetupError); ok {
		return true
	}
	if target == ErrSetupFailed {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("view", "dialog")
//	fmt.Println(err) // "view 'dialog' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("unknown lifecycle step")
//	err = err.WithField("script").WithValue("jump")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("loading view dialog", 30*time.Second)
//	fmt.Println(err) // "timeout error: loading view dialog (timeout: 30s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing ViewkitError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout or ErrLoadSuperseded
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var vkErr ViewkitError
	if As(err, &vkErr) {
		return vkErr.IsRetryable()
	}

	if Is(err, ErrTimeout) || Is(err, ErrLoadSuperseded) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var vkErr ViewkitError
	if As(err, &vkErr) {
		return vkErr.IsUserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ViewkitError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var vkErr ViewkitError
	if As(err, &vkErr) {
		return vkErr.Severity()
	}

	return SeverityError
}

// IsLifecycleError returns true if the error was raised by the view
// controller (InvalidStateError or SetupError).
func IsLifecycleError(err error) bool {
	if err == nil {
		return false
	}

	var stateErr *InvalidStateError
	var setupErr *SetupError

	return As(err, &stateErr) || As(err, &setupErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the ViewkitError interface.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
