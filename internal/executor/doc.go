// Package executor runs lifecycle hooks for views on a bounded worker pool.
//
// A [Hook] is a unit of work bound to one lifecycle [view.Phase]. Hooks carry
// an Order: every hook of the lowest order runs first, concurrently with the
// other hooks of that order, and the next order group starts only once the
// previous group has finished. Hooks of one phase therefore see the effects
// of every lower-ordered hook.
//
// [Executor] implements [view.Dispatcher], so it can be handed to views
// directly:
//
//	exec := executor.New(executor.Config{Workers: 4}, logger)
//	exec.Register(executor.Hook{
//	    Name:  "fade-in",
//	    Phase: view.PhaseShow,
//	    Run: func(ctx context.Context, viewID string, h view.Handle) {
//	        // ... animate h ...
//	    },
//	})
//	v, _ := view.New(obj, panel, view.Options{Dispatcher: exec})
//
// In async mode Dispatch returns immediately and [Executor.Wait] blocks until
// every dispatched phase has finished.
package executor
