// Package event provides a pub-sub bus for view lifecycle events.
//
// Each view controller owns a private listener registry for its own
// notifications. The [Bus] in this package is the host-wide channel: every
// view publishes its transitions here so that a manager, the terminal UI or
// diagnostics can observe all views without holding references to them.
//
// # Main Types
//
//   - [Event]: Interface that all events implement (EventType and Timestamp)
//   - [Bus]: Synchronous pub-sub dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Types
//
//   - view.loaded: Load completed, view is active
//   - view.load_failed: Setup failed or the load was superseded
//   - view.shown: visual object became visible
//   - view.hidden: Hide accepted (instant or delayed)
//   - view.hide_completed: a delayed hide turned the visual object off
//   - view.unloaded: Unload released the view
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously and protected against panics.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeViewShown, func(e event.Event) {
//	    shown := e.(event.ViewShownEvent)
//	    log.Printf("view %s shown", shown.ViewID)
//	})
//
//	id := bus.SubscribeAll(recordTransition)
//	bus.Unsubscribe(id)
package event
