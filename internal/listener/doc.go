// Package listener provides the per-view listener registry.
//
// A [Registry] maps an opaque [Key] (an event category such as "confirmed"
// or "closed") to an ordered list of zero-argument callbacks. Callers define
// their own key vocabulary; the registry never enumerates it.
//
// # Semantics
//
//   - Add appends and never de-duplicates. Adding the same function twice
//     yields two IDs and two invocations per Notify.
//   - Remove, Clear and ClearAll are no-ops on missing keys or IDs.
//   - A missing key and an empty list are both "no listeners".
//   - Notify invokes callbacks in insertion order over a snapshot taken at
//     notify time. Callbacks may add or remove listeners (including
//     themselves) without affecting the dispatch in progress.
//
// # Thread Safety
//
// [Registry] is safe for concurrent use. The internal lock is never held
// while callbacks run, so a callback may freely call back into the registry.
// A panicking callback is recovered and logged, and dispatch continues with
// the remaining callbacks.
//
// # Basic Usage
//
//	reg := listener.NewRegistry(logger)
//
//	id := reg.Add("confirmed", func() { save() })
//	reg.Notify("confirmed")
//	reg.Remove("confirmed", id)
package listener
