// Package logging provides structured logging for viewkit hosts.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes. Every view controller logs its lifecycle
// transitions through a child logger carrying the view ID and container ID,
// which makes it possible to reconstruct the load/show/hide/unload history
// of a single view after the fact.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer safely.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/state", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	viewLogger := logger.WithView("dialog").WithContainer("modals")
//	viewLogger.Info("view loaded", "show_on_load", true)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"view loaded","view_id":"dialog","container_id":"modals","show_on_load":true}
//
// # Log Levels
//
//   - DEBUG: every transition, listener registration and hook dispatch
//   - INFO: load, show, hide and unload completions
//   - WARN: recovered listener or hook panics, superseded loads
//   - ERROR: setup failures
//
// Use [NopLogger] in tests or when logging is disabled.
package logging
