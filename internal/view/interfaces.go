package view

import "context"

// Handle is the host's visual object. Implementations are called with the
// view's internal lock held and must not call back into the View.
type Handle interface {
	SetVisible(visible bool)
	Visible() bool
	// Destroy releases the visual object irreversibly.
	Destroy()
}

// Lifecycle is implemented per concrete view type.
type Lifecycle interface {
	// Setup acquires everything the view needs. It may block (for example
	// while assets load) and must honor ctx, which is cancelled when the load
	// is superseded by Unload or a newer Load. On success the view must be
	// fully usable.
	Setup(ctx context.Context) error
	// Cleanup releases everything Setup acquired. It must not fail.
	Cleanup()
}

// Dispatcher receives every lifecycle transition together with the handle.
// The executor package provides the standard implementation.
type Dispatcher interface {
	Dispatch(phase Phase, viewID string, h Handle)
}

// LifecycleFuncs adapts plain functions to Lifecycle. Nil fields are no-ops.
type LifecycleFuncs struct {
	SetupFunc   func(ctx context.Context) error
	CleanupFunc func()
}

// Setup calls SetupFunc.
func (f LifecycleFuncs) Setup(ctx context.Context) error {
	if f.SetupFunc == nil {
		return nil
	}
	return f.SetupFunc(ctx)
}

// Cleanup calls CleanupFunc.
func (f LifecycleFuncs) Cleanup() {
	if f.CleanupFunc != nil {
		f.CleanupFunc()
	}
}
