package view

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/listener"
	"github.com/Iron-Ham/viewkit/internal/logging"
)

// Keys of the persistent lifecycle registry.
const (
	showKey listener.Key = "show"
	hideKey listener.Key = "hide"
)

// teardown selects what Unload does with the visual object.
type teardown int

const (
	teardownKeep    teardown = iota // leave it hidden and reusable
	teardownDestroy                 // destroy it
	teardownDetach                  // the host already destroyed it
)

// View drives the lifecycle of one visual unit and owns the listeners
// scoped to it. All methods are safe for concurrent use.
type View struct {
	id          string
	containerID string
	showOnLoad  bool
	hideDelay   time.Duration

	handle     Handle
	lifecycle  Lifecycle
	clock      clock.Clock
	logger     *logging.Logger
	bus        *event.Bus
	dispatcher Dispatcher

	listeners *listener.Registry
	events    *listener.Registry

	mu          sync.Mutex
	active      bool
	loading     bool
	destroyed   bool
	gen         uint64 // bumped by every Load start and every Unload
	cancelLoad  context.CancelFunc
	hidePending bool
	hideSeq     uint64 // bumped whenever a pending delayed hide is scheduled or cancelled
	hideTimer   clock.Timer
}

// New creates an inert view: not active and with its visual object hidden.
func New(h Handle, lc Lifecycle, opts Options) (*View, error) {
	if h == nil {
		return nil, errors.NewValidationError("view requires a visual object handle").WithField("handle")
	}
	if lc == nil {
		return nil, errors.NewValidationError("view requires a lifecycle implementation").WithField("lifecycle")
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithView(id)
	if opts.ContainerID != "" {
		logger = logger.WithContainer(opts.ContainerID)
	}

	v := &View{
		id:          id,
		containerID: opts.ContainerID,
		showOnLoad:  opts.ShowOnLoad,
		hideDelay:   opts.hideDelay(),
		handle:      h,
		lifecycle:   lc,
		clock:       clk,
		logger:      logger,
		bus:         opts.Bus,
		dispatcher:  opts.Dispatcher,
		listeners:   listener.NewRegistry(logger),
		events:      listener.NewRegistry(logger),
	}
	for _, cb := range opts.OnShow {
		v.events.Add(showKey, cb)
	}
	for _, cb := range opts.OnHide {
		v.events.Add(hideKey, cb)
	}

	h.SetVisible(false)
	return v, nil
}

// ID returns the view identifier.
func (v *View) ID() string { return v.id }

// ContainerID returns the placement hint given at construction.
func (v *View) ContainerID() string { return v.containerID }

// HideDelay returns the delay applied by a non-instant Hide.
func (v *View) HideDelay() time.Duration { return v.hideDelay }

// Active reports whether Load has completed and Unload has not run since.
func (v *View) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// Visible reports the visibility of the visual object.
func (v *View) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked()
}

// HidePending reports whether a delayed hide is waiting for its timer.
func (v *View) HidePending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidePending
}

// Destroyed reports whether the visual object has been destroyed.
func (v *View) Destroyed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.destroyed
}

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.loading:
		return StateLoading
	case !v.active:
		return StateUnloaded
	case v.visibleLocked():
		return StateActiveVisible
	default:
		return StateActiveHidden
	}
}

func (v *View) visibleLocked() bool {
	if v.destroyed {
		return false
	}
	return v.handle.Visible()
}

// Load runs Setup and activates the view. An already active view is first
// unloaded without destroying its visual object. Load blocks until Setup
// returns.
//
// A Setup failure is returned as *errors.SetupError and leaves the view
// inactive. If Unload or another Load runs while Setup is in flight, this
// call returns errors.ErrLoadSuperseded without activating the view, and
// Cleanup releases whatever the completed Setup acquired.
func (v *View) Load(ctx context.Context) error {
	if v.Active() {
		v.logger.Debug("reloading active view")
		v.unload(teardownKeep)
	}

	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return errors.NewInvalidStateError("load", "attempting to load a view whose visual object was destroyed").
			WithViewID(v.id).
			WithCause(errors.ErrDestroyed)
	}
	if v.cancelLoad != nil {
		v.cancelLoad()
	}
	v.gen++
	gen := v.gen
	setupCtx, cancel := context.WithCancel(ctx)
	v.cancelLoad = cancel
	v.loading = true
	v.mu.Unlock()
	defer cancel()

	v.logger.Debug("view loading", "generation", gen)
	start := v.clock.Now()
	err := v.runSetup(setupCtx)
	elapsed := v.clock.Now().Sub(start)

	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		if err == nil {
			v.runCleanup()
		}
		superseded := errors.Wrapf(errors.ErrLoadSuperseded, "view %s", v.id)
		v.logger.Warn("view load superseded", "generation", gen, "setup_error", err)
		v.publish(event.NewViewLoadFailedEvent(v.ref(), superseded))
		return superseded
	}
	v.loading = false
	v.cancelLoad = nil
	if err != nil {
		v.mu.Unlock()
		var setupErr *errors.SetupError
		if !errors.As(err, &setupErr) {
			setupErr = errors.NewSetupError("setup failed", err).WithViewID(v.id)
		} else if setupErr.ViewID == "" {
			setupErr.WithViewID(v.id)
		}
		v.logger.Error("view setup failed", "error", setupErr.Error())
		v.publish(event.NewViewLoadFailedEvent(v.ref(), setupErr))
		return setupErr
	}
	v.active = true
	v.mu.Unlock()

	v.logger.Info("view loaded", "setup_ms", elapsed.Milliseconds(), "show_on_load", v.showOnLoad)
	v.publish(event.NewViewLoadedEvent(v.ref(), elapsed))
	v.dispatch(PhaseLoad)

	if v.showOnLoad {
		return v.Show()
	}
	return nil
}

// runSetup calls Setup, converting a panic into a SetupError.
func (v *View) runSetup(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("view setup panicked", "panic", r, "stack", string(debug.Stack()))
			err = errors.NewSetupError(fmt.Sprintf("recovered panic: %v", r), errors.ErrSetupPanicked).
				WithViewID(v.id)
		}
	}()
	return v.lifecycle.Setup(ctx)
}

// runCleanup calls Cleanup, logging and swallowing a panic.
func (v *View) runCleanup() {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("view cleanup panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	v.lifecycle.Cleanup()
}

// Show makes the visual object visible and then fires the show event, so
// subscribers observe a visible object. Showing a visible view is a no-op,
// except while a delayed hide is pending: then Show cancels the hide and
// fires the show event again.
func (v *View) Show() error {
	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return errors.NewInvalidStateError("show", "attempting to show a view that has not been loaded").
			WithViewID(v.id)
	}
	if v.handle.Visible() {
		if !v.hidePending {
			v.mu.Unlock()
			return nil
		}
		v.cancelHideLocked()
	} else {
		v.handle.SetVisible(true)
	}
	v.mu.Unlock()

	v.logger.Info("view shown")
	v.events.Notify(showKey)
	v.publish(event.NewViewShownEvent(v.ref()))
	v.dispatch(PhaseShow)
	return nil
}

// Hide hides the visual object. An instant hide takes effect immediately
// and does not fire the hide event. Otherwise the hide event fires first and
// the visual object stays visible for the hide delay. Hiding a hidden view,
// or hiding again while a delayed hide is pending, is a no-op.
func (v *View) Hide(instant bool) error {
	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return errors.NewInvalidStateError("hide", "attempting to hide a view that has not been loaded").
			WithViewID(v.id)
	}
	if !v.handle.Visible() {
		v.mu.Unlock()
		return nil
	}

	if instant {
		v.cancelHideLocked()
		v.handle.SetVisible(false)
		v.mu.Unlock()

		v.logger.Info("view hidden", "instant", true)
		v.publish(event.NewViewHiddenEvent(v.ref(), true, 0))
		v.dispatch(PhaseHide)
		return nil
	}

	if v.hidePending {
		v.mu.Unlock()
		return nil
	}
	v.hidePending = true
	v.hideSeq++
	seq, gen := v.hideSeq, v.gen
	v.mu.Unlock()

	v.logger.Info("view hiding", "delay", v.hideDelay.String())
	v.events.Notify(hideKey)
	v.publish(event.NewViewHiddenEvent(v.ref(), false, v.hideDelay))
	v.dispatch(PhaseHide)

	v.mu.Lock()
	defer v.mu.Unlock()
	// A hide listener may have shown, hidden or unloaded the view.
	if v.gen != gen || v.hideSeq != seq || !v.hidePending {
		return nil
	}
	v.hideTimer = v.clock.AfterFunc(v.hideDelay, func() { v.completeHide(gen, seq) })
	return nil
}

// completeHide is the continuation of a delayed hide.
func (v *View) completeHide(gen, seq uint64) {
	v.mu.Lock()
	if v.gen != gen || v.hideSeq != seq || !v.hidePending {
		v.mu.Unlock()
		return
	}
	v.hidePending = false
	v.hideTimer = nil
	v.handle.SetVisible(false)
	v.mu.Unlock()

	v.logger.Debug("delayed hide completed")
	v.publish(event.NewViewHideCompletedEvent(v.ref()))
}

// cancelHideLocked drops a pending delayed hide. Callers hold v.mu.
func (v *View) cancelHideLocked() {
	if !v.hidePending {
		return
	}
	if v.hideTimer != nil {
		v.hideTimer.Stop()
		v.hideTimer = nil
	}
	v.hidePending = false
	v.hideSeq++
}

// Unload deactivates the view: it clears every listener, runs Cleanup and
// then destroys the visual object if destroy is true, or leaves it hidden
// for a later Load otherwise. Unloading an inactive view is a no-op. A
// pending Load or delayed hide is cancelled.
func (v *View) Unload(destroy bool) {
	if destroy {
		v.unload(teardownDestroy)
		return
	}
	v.unload(teardownKeep)
}

// Detach tells the view that the host destroyed its visual object. The view
// is unloaded without touching the object again and can no longer be loaded.
func (v *View) Detach() {
	v.unload(teardownDetach)
}

func (v *View) unload(mode teardown) {
	v.mu.Lock()
	if mode == teardownDetach {
		wasDestroyed := v.destroyed
		v.destroyed = true
		if !wasDestroyed && !v.active && !v.loading {
			v.mu.Unlock()
			v.logger.Debug("inactive view detached")
			return
		}
	}
	if !v.active && !v.loading {
		v.mu.Unlock()
		return
	}
	wasActive := v.active
	v.active = false
	v.loading = false
	v.gen++
	v.cancelHideLocked()
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}
	switch mode {
	case teardownDestroy:
		// Marked now so no Load can start; the object itself goes after Cleanup.
		v.destroyed = true
	case teardownKeep:
		v.handle.SetVisible(false)
	}
	v.mu.Unlock()

	v.listeners.ClearAll()
	if wasActive {
		v.runCleanup()
	}
	if mode == teardownDestroy {
		v.handle.Destroy()
	}

	destroyed := mode != teardownKeep
	v.logger.Info("view unloaded", "destroyed", destroyed, "was_active", wasActive)
	v.publish(event.NewViewUnloadedEvent(v.ref(), destroyed))
	v.dispatch(PhaseUnload)
}

// Notify invokes the listeners registered under key and returns how many
// ran. It does not require the view to be active.
func (v *View) Notify(key listener.Key) int {
	return v.listeners.Notify(key)
}

// AddListener registers cb under key until it is removed or the view is
// unloaded.
func (v *View) AddListener(key listener.Key, cb listener.Callback) listener.ID {
	return v.listeners.Add(key, cb)
}

// RemoveListener removes a registration made with AddListener.
func (v *View) RemoveListener(key listener.Key, id listener.ID) bool {
	return v.listeners.Remove(key, id)
}

// ClearListeners removes every listener registered under key.
func (v *View) ClearListeners(key listener.Key) {
	v.listeners.Clear(key)
}

// ClearAllListeners removes every listener.
func (v *View) ClearAllListeners() {
	v.listeners.ClearAll()
}

// ListenerCount returns the number of registrations across all keys.
func (v *View) ListenerCount() int {
	return v.listeners.Count()
}

// OnShow subscribes cb to the show event. The subscription survives Unload.
func (v *View) OnShow(cb func()) listener.ID {
	return v.events.Add(showKey, cb)
}

// OnHide subscribes cb to the non-instant hide event. The subscription
// survives Unload.
func (v *View) OnHide(cb func()) listener.ID {
	return v.events.Add(hideKey, cb)
}

func (v *View) ref() event.ViewRef {
	return event.ViewRef{ViewID: v.id, ContainerID: v.containerID}
}

func (v *View) publish(e event.Event) {
	if v.bus != nil {
		v.bus.Publish(e)
	}
}

func (v *View) dispatch(p Phase) {
	if v.dispatcher != nil {
		v.dispatcher.Dispatch(p, v.id, v.handle)
	}
}
