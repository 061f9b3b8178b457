package view

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/event"
)

// recordingHandle is a Handle that records every call in order.
type recordingHandle struct {
	mu        sync.Mutex
	visible   bool
	destroyed int
	calls     []string
}

func (h *recordingHandle) SetVisible(visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = visible
	if visible {
		h.calls = append(h.calls, "visible")
	} else {
		h.calls = append(h.calls, "invisible")
	}
}

func (h *recordingHandle) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

func (h *recordingHandle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed++
	h.calls = append(h.calls, "destroy")
}

func (h *recordingHandle) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *recordingHandle) history() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// countingLifecycle counts Setup and Cleanup calls.
type countingLifecycle struct {
	mu       sync.Mutex
	setups   int
	cleanups int
	setupFn  func(ctx context.Context) error
	onClean  func()
}

func (l *countingLifecycle) Setup(ctx context.Context) error {
	l.mu.Lock()
	l.setups++
	fn := l.setupFn
	l.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (l *countingLifecycle) Cleanup() {
	l.mu.Lock()
	l.cleanups++
	fn := l.onClean
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (l *countingLifecycle) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setups, l.cleanups
}

type fixture struct {
	view   *View
	handle *recordingHandle
	lc     *countingLifecycle
	clock  *clock.Fake
	shows  int
	hides  int
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		handle: &recordingHandle{visible: true},
		lc:     &countingLifecycle{},
		clock:  clock.NewFake(),
	}
	opts.Clock = f.clock
	if opts.ID == "" {
		opts.ID = "test-view"
	}
	opts.OnShow = append(opts.OnShow, func() { f.shows++ })
	opts.OnHide = append(opts.OnHide, func() { f.hides++ })

	v, err := New(f.handle, f.lc, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.view = v
	return f
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("constructs inert view", func(t *testing.T) {
		f := newFixture(t, Options{ContainerID: "modals"})

		if f.view.Active() {
			t.Error("new view should not be active")
		}
		if f.handle.Visible() {
			t.Error("new view should hide its visual object")
		}
		if f.view.State() != StateUnloaded {
			t.Errorf("State() = %v, want unloaded", f.view.State())
		}
		if f.view.ContainerID() != "modals" {
			t.Errorf("ContainerID() = %q, want modals", f.view.ContainerID())
		}
		if f.view.HideDelay() != DefaultHideDelay {
			t.Errorf("HideDelay() = %v, want %v", f.view.HideDelay(), DefaultHideDelay)
		}
	})

	t.Run("generates an id", func(t *testing.T) {
		v, err := New(&recordingHandle{}, &countingLifecycle{}, Options{})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if v.ID() == "" {
			t.Error("ID() should not be empty")
		}
	})

	t.Run("rejects missing collaborators", func(t *testing.T) {
		if _, err := New(nil, &countingLifecycle{}, Options{}); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("New(nil handle) error = %v, want invalid input", err)
		}
		if _, err := New(&recordingHandle{}, nil, Options{}); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("New(nil lifecycle) error = %v, want invalid input", err)
		}
	})

	t.Run("negative hide delay means none", func(t *testing.T) {
		f := newFixture(t, Options{HideDelay: -1})
		if f.view.HideDelay() != 0 {
			t.Errorf("HideDelay() = %v, want 0", f.view.HideDelay())
		}
	})
}

func TestShowHide_BeforeLoad(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.view.Show()
	if !errors.Is(err, errors.ErrInvalidState) {
		t.Errorf("Show() error = %v, want invalid state", err)
	}
	var stateErr *errors.InvalidStateError
	if !errors.As(err, &stateErr) || stateErr.Op != "show" || stateErr.ViewID != "test-view" {
		t.Errorf("Show() error = %#v, want InvalidStateError for op show", err)
	}

	for _, instant := range []bool{true, false} {
		err := f.view.Hide(instant)
		if !errors.Is(err, errors.ErrInvalidState) {
			t.Errorf("Hide(%v) error = %v, want invalid state", instant, err)
		}
		if !errors.Is(err, errors.ErrNotLoaded) {
			t.Errorf("Hide(%v) error = %v, want not loaded", instant, err)
		}
	}

	if f.shows != 0 || f.hides != 0 {
		t.Errorf("no events should fire, got shows=%d hides=%d", f.shows, f.hides)
	}
}

func TestLoad(t *testing.T) {
	t.Run("activates without showing", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)

		if !f.view.Active() {
			t.Error("view should be active after Load")
		}
		if f.view.Visible() {
			t.Error("view should stay hidden when ShowOnLoad is false")
		}
		if f.view.State() != StateActiveHidden {
			t.Errorf("State() = %v, want active_hidden", f.view.State())
		}
		if setups, _ := f.lc.counts(); setups != 1 {
			t.Errorf("Setup called %d times, want 1", setups)
		}
		if f.shows != 0 {
			t.Errorf("onShow fired %d times, want 0", f.shows)
		}
	})

	t.Run("show on load", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		if setups, _ := f.lc.counts(); setups != 1 {
			t.Errorf("Setup called %d times, want 1", setups)
		}
		if !f.view.Active() {
			t.Error("view should be active")
		}
		if !f.handle.Visible() {
			t.Error("visual object should be visible")
		}
		if f.shows != 1 {
			t.Errorf("onShow fired %d times, want 1", f.shows)
		}
		if f.hides != 0 {
			t.Errorf("onHide fired %d times, want 0", f.hides)
		}
		if f.view.State() != StateActiveVisible {
			t.Errorf("State() = %v, want active_visible", f.view.State())
		}
	})

	t.Run("state is loading while setup runs", func(t *testing.T) {
		f := newFixture(t, Options{})
		entered := make(chan struct{})
		release := make(chan struct{})
		f.lc.setupFn = func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		}

		done := make(chan error, 1)
		go func() { done <- f.view.Load(context.Background()) }()

		<-entered
		if f.view.State() != StateLoading {
			t.Errorf("State() = %v during Setup, want loading", f.view.State())
		}
		if f.view.Active() {
			t.Error("view must not be active before Setup completes")
		}
		if err := f.view.Show(); !errors.Is(err, errors.ErrInvalidState) {
			t.Errorf("Show() during Setup error = %v, want invalid state", err)
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if f.view.State() != StateActiveHidden {
			t.Errorf("State() = %v, want active_hidden", f.view.State())
		}
	})

	t.Run("setup failure propagates", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		cause := stderrors.New("asset missing")
		f.lc.setupFn = func(ctx context.Context) error { return cause }

		err := f.view.Load(context.Background())
		if !errors.Is(err, errors.ErrSetupFailed) {
			t.Errorf("Load() error = %v, want setup failure", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("Load() error = %v, want cause %v", err, cause)
		}
		var setupErr *errors.SetupError
		if !errors.As(err, &setupErr) || setupErr.ViewID != "test-view" {
			t.Errorf("Load() error = %#v, want SetupError for test-view", err)
		}
		if f.view.Active() {
			t.Error("view must stay inactive after Setup failure")
		}
		if f.view.State() != StateUnloaded {
			t.Errorf("State() = %v, want unloaded", f.view.State())
		}
		if f.shows != 0 {
			t.Error("onShow must not fire after Setup failure")
		}
		if _, cleanups := f.lc.counts(); cleanups != 0 {
			t.Errorf("Cleanup called %d times after failed Setup, want 0", cleanups)
		}
	})

	t.Run("setup panic becomes setup error", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.lc.setupFn = func(ctx context.Context) error { panic("boom") }

		err := f.view.Load(context.Background())
		if !errors.Is(err, errors.ErrSetupPanicked) {
			t.Errorf("Load() error = %v, want setup panic", err)
		}
		if f.view.Active() {
			t.Error("view must stay inactive after Setup panic")
		}
	})

	t.Run("retry after failure", func(t *testing.T) {
		f := newFixture(t, Options{})
		fail := true
		f.lc.setupFn = func(ctx context.Context) error {
			if fail {
				return stderrors.New("transient")
			}
			return nil
		}

		if err := f.view.Load(context.Background()); err == nil {
			t.Fatal("first Load() should fail")
		}
		fail = false
		f.load(t)
		if !f.view.Active() {
			t.Error("second Load() should activate the view")
		}
	})

	t.Run("reload in place", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		count := 0
		f.view.AddListener("x", func() { count++ })

		f.load(t)

		setups, cleanups := f.lc.counts()
		if setups != 2 || cleanups != 1 {
			t.Errorf("setups=%d cleanups=%d, want 2 and 1", setups, cleanups)
		}
		if f.handle.destroyed != 0 {
			t.Error("reload must not destroy the visual object")
		}
		if f.view.Notify("x") != 0 || count != 0 {
			t.Error("reload must clear listeners")
		}
		if !f.view.Visible() || f.shows != 2 {
			t.Errorf("reload with ShowOnLoad should show again, visible=%v shows=%d", f.view.Visible(), f.shows)
		}
	})
}

func TestShow(t *testing.T) {
	t.Run("visibility changes before event", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)

		var visibleDuringEvent bool
		f.view.OnShow(func() {
			visibleDuringEvent = f.handle.Visible()
			f.handle.record("onShow")
		})

		if err := f.view.Show(); err != nil {
			t.Fatalf("Show() error = %v", err)
		}
		if !visibleDuringEvent {
			t.Error("subscribers must observe a visible object")
		}
		hist := f.handle.history()
		if len(hist) < 2 || hist[len(hist)-2] != "visible" || hist[len(hist)-1] != "onShow" {
			t.Errorf("history = %v, want ... visible onShow", hist)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)

		if err := f.view.Show(); err != nil {
			t.Fatalf("Show() error = %v", err)
		}
		if err := f.view.Show(); err != nil {
			t.Fatalf("second Show() error = %v", err)
		}
		if f.shows != 1 {
			t.Errorf("onShow fired %d times, want 1", f.shows)
		}
	})
}

func TestHide(t *testing.T) {
	t.Run("instant", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		if err := f.view.Hide(true); err != nil {
			t.Fatalf("Hide(true) error = %v", err)
		}
		if f.handle.Visible() {
			t.Error("instant hide should hide immediately")
		}
		if f.hides != 0 {
			t.Errorf("instant hide fired onHide %d times, want 0", f.hides)
		}
		if f.clock.Pending() != 0 {
			t.Error("instant hide should not schedule a timer")
		}
	})

	t.Run("delayed", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		visibleDuringEvent := false
		f.view.OnHide(func() { visibleDuringEvent = f.handle.Visible() })

		if err := f.view.Hide(false); err != nil {
			t.Fatalf("Hide(false) error = %v", err)
		}
		if f.hides != 1 {
			t.Errorf("onHide fired %d times, want 1", f.hides)
		}
		if !visibleDuringEvent {
			t.Error("onHide should fire while the object is still visible")
		}
		if !f.view.HidePending() {
			t.Error("HidePending() = false after delayed Hide")
		}

		f.clock.Advance(DefaultHideDelay - time.Millisecond)
		if !f.handle.Visible() {
			t.Error("object should stay visible until the delay elapses")
		}

		f.clock.Advance(time.Millisecond)
		if f.handle.Visible() {
			t.Error("object should be hidden after the delay")
		}
		if f.view.HidePending() {
			t.Error("HidePending() = true after the delay")
		}
		if f.view.State() != StateActiveHidden {
			t.Errorf("State() = %v, want active_hidden", f.view.State())
		}
	})

	t.Run("custom delay", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true, HideDelay: 250 * time.Millisecond})
		f.load(t)

		_ = f.view.Hide(false)
		f.clock.Advance(250 * time.Millisecond)
		if f.handle.Visible() {
			t.Error("object should be hidden after the configured delay")
		}
	})

	t.Run("already hidden is a no-op", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)

		if err := f.view.Hide(false); err != nil {
			t.Fatalf("Hide(false) error = %v", err)
		}
		if f.hides != 0 {
			t.Errorf("hiding a hidden view fired onHide %d times", f.hides)
		}
		if f.clock.Pending() != 0 {
			t.Error("hiding a hidden view should not schedule a timer")
		}
	})

	t.Run("duplicate delayed hide is coalesced", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		_ = f.view.Hide(false)
		f.clock.Advance(2 * time.Second)
		_ = f.view.Hide(false)

		if f.hides != 1 {
			t.Errorf("onHide fired %d times, want 1", f.hides)
		}
		if f.clock.Pending() != 1 {
			t.Errorf("pending timers = %d, want 1", f.clock.Pending())
		}

		f.clock.Advance(3 * time.Second)
		if f.handle.Visible() {
			t.Error("original timer should still hide the object")
		}
	})

	t.Run("instant hide cancels pending delayed hide", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		_ = f.view.Hide(false)
		_ = f.view.Hide(true)

		if f.handle.Visible() {
			t.Error("instant hide should hide immediately")
		}
		if f.clock.Pending() != 0 {
			t.Error("instant hide should stop the pending timer")
		}

		_ = f.view.Show()
		f.clock.Advance(time.Minute)
		if !f.handle.Visible() {
			t.Error("a cancelled delayed hide must not fire later")
		}
	})

	t.Run("show cancels pending delayed hide", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		_ = f.view.Hide(false)
		if err := f.view.Show(); err != nil {
			t.Fatalf("Show() error = %v", err)
		}
		if f.shows != 2 {
			t.Errorf("onShow fired %d times, want 2", f.shows)
		}
		if f.view.HidePending() {
			t.Error("Show should cancel the pending hide")
		}

		f.clock.Advance(time.Minute)
		if !f.handle.Visible() {
			t.Error("object should stay visible after Show cancelled the hide")
		}

		// A fresh hide works normally afterwards.
		_ = f.view.Hide(false)
		f.clock.Advance(DefaultHideDelay)
		if f.handle.Visible() {
			t.Error("second delayed hide should complete")
		}
	})

	t.Run("hide listener that shows again", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		f.view.OnHide(func() { _ = f.view.Show() })
		_ = f.view.Hide(false)

		if f.clock.Pending() != 0 {
			t.Error("no timer should be scheduled when a hide listener cancelled the hide")
		}
		f.clock.Advance(time.Minute)
		if !f.handle.Visible() {
			t.Error("object should stay visible")
		}
	})
}

func TestUnload(t *testing.T) {
	t.Run("inactive is a no-op", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.view.Unload(true)

		if _, cleanups := f.lc.counts(); cleanups != 0 {
			t.Errorf("Cleanup called %d times, want 0", cleanups)
		}
		if f.handle.destroyed != 0 {
			t.Error("unloading an inactive view must not destroy it")
		}
	})

	t.Run("clears listeners, cleans up and destroys", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		count := 0
		f.view.AddListener("x", func() { count++ })
		f.view.AddListener("y", func() { count++ })

		var order []string
		f.lc.onClean = func() {
			order = append(order, "cleanup")
			if f.view.ListenerCount() != 0 {
				t.Error("listeners should be cleared before Cleanup")
			}
			if f.handle.destroyed != 0 {
				t.Error("Cleanup should run before the object is destroyed")
			}
		}

		f.view.Unload(true)

		if f.view.Active() {
			t.Error("view should be inactive")
		}
		if _, cleanups := f.lc.counts(); cleanups != 1 {
			t.Errorf("Cleanup called %d times, want 1", cleanups)
		}
		if f.handle.destroyed != 1 {
			t.Errorf("Destroy called %d times, want 1", f.handle.destroyed)
		}
		if f.view.Notify("x")+f.view.Notify("y") != 0 || count != 0 {
			t.Error("listeners should be cleared")
		}
		if len(order) != 1 {
			t.Errorf("Cleanup order = %v", order)
		}
		if !f.view.Destroyed() {
			t.Error("Destroyed() = false after Unload(true)")
		}

		f.view.Unload(true)
		if _, cleanups := f.lc.counts(); cleanups != 1 {
			t.Errorf("second Unload ran Cleanup again (%d)", cleanups)
		}
	})

	t.Run("keep object", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		f.view.Unload(false)

		if f.handle.destroyed != 0 {
			t.Error("Unload(false) must not destroy the object")
		}
		if f.handle.Visible() {
			t.Error("Unload(false) should leave the object hidden")
		}
		if f.view.Destroyed() {
			t.Error("Destroyed() = true after Unload(false)")
		}

		f.load(t)
		if !f.view.Active() || !f.handle.Visible() {
			t.Error("view should be reusable after Unload(false)")
		}
	})

	t.Run("destroyed view cannot load", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)
		f.view.Unload(true)

		err := f.view.Load(context.Background())
		if !errors.Is(err, errors.ErrDestroyed) {
			t.Errorf("Load() after destroy error = %v, want destroyed", err)
		}
		if !errors.Is(err, errors.ErrInvalidState) {
			t.Errorf("Load() after destroy error = %v, want invalid state", err)
		}
		if setups, _ := f.lc.counts(); setups != 1 {
			t.Errorf("Setup called %d times, want 1", setups)
		}
	})

	t.Run("show and hide fail after unload", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)
		f.view.Unload(false)

		if err := f.view.Show(); !errors.Is(err, errors.ErrInvalidState) {
			t.Errorf("Show() error = %v, want invalid state", err)
		}
		if err := f.view.Hide(true); !errors.Is(err, errors.ErrInvalidState) {
			t.Errorf("Hide() error = %v, want invalid state", err)
		}
	})

	t.Run("cancels pending delayed hide", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)

		_ = f.view.Hide(false)
		f.view.Unload(false)
		if f.clock.Pending() != 0 {
			t.Error("Unload should stop the pending hide timer")
		}

		f.load(t)
		f.clock.Advance(time.Minute)
		if !f.handle.Visible() {
			t.Error("a hide scheduled before Unload must not affect the next load")
		}
	})

	t.Run("lifecycle subscriptions survive unload", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)
		f.view.Unload(false)
		f.load(t)

		if f.shows != 2 {
			t.Errorf("onShow fired %d times across two loads, want 2", f.shows)
		}
	})

	t.Run("cleanup panic is recovered", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)
		f.lc.onClean = func() { panic("cleanup") }

		f.view.Unload(true)
		if f.handle.destroyed != 1 {
			t.Error("object should be destroyed even when Cleanup panics")
		}
	})
}

func TestUnloadDuringLoad(t *testing.T) {
	f := newFixture(t, Options{ShowOnLoad: true})

	entered := make(chan struct{})
	f.lc.setupFn = func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		// Setup acquired its resources before noticing the cancellation.
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.view.Load(context.Background()) }()

	<-entered
	f.view.Unload(false)

	err := <-done
	if !errors.Is(err, errors.ErrLoadSuperseded) {
		t.Errorf("Load() error = %v, want superseded", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("superseded load should be retryable")
	}
	if f.view.Active() {
		t.Error("superseded load must not resurrect the view")
	}
	if f.view.State() != StateUnloaded {
		t.Errorf("State() = %v, want unloaded", f.view.State())
	}
	if _, cleanups := f.lc.counts(); cleanups != 1 {
		t.Errorf("Cleanup called %d times, want 1 for the superseded Setup", cleanups)
	}
	if f.shows != 0 {
		t.Error("superseded load must not show the view")
	}
}

func TestUnloadDuringLoad_SetupFails(t *testing.T) {
	f := newFixture(t, Options{})

	entered := make(chan struct{})
	f.lc.setupFn = func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() { done <- f.view.Load(context.Background()) }()

	<-entered
	f.view.Unload(true)

	if err := <-done; !errors.Is(err, errors.ErrLoadSuperseded) {
		t.Errorf("Load() error = %v, want superseded", err)
	}
	if _, cleanups := f.lc.counts(); cleanups != 0 {
		t.Errorf("Cleanup called %d times after failed Setup, want 0", cleanups)
	}
	if f.handle.destroyed != 1 {
		t.Errorf("Destroy called %d times, want 1", f.handle.destroyed)
	}
}

func TestLoadSupersededByLoad(t *testing.T) {
	f := newFixture(t, Options{})

	first := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	f.lc.setupFn = func(ctx context.Context) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(first)
			<-ctx.Done()
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.view.Load(context.Background()) }()
	<-first

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if err := <-done; !errors.Is(err, errors.ErrLoadSuperseded) {
		t.Errorf("first Load() error = %v, want superseded", err)
	}
	if !f.view.Active() {
		t.Error("second Load should leave the view active")
	}
	if _, cleanups := f.lc.counts(); cleanups != 1 {
		t.Errorf("Cleanup called %d times, want 1 for the superseded Setup", cleanups)
	}
}

func TestLoad_ParentContextCancelled(t *testing.T) {
	f := newFixture(t, Options{})
	f.lc.setupFn = func(ctx context.Context) error { return ctx.Err() }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.view.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
	if !errors.Is(err, errors.ErrSetupFailed) {
		t.Errorf("Load() error = %v, want setup failure", err)
	}
}

func TestListeners(t *testing.T) {
	t.Run("notify scenario", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.load(t)

		count := 0
		f.view.AddListener("x", func() { count++ })

		if n := f.view.Notify("x"); n != 1 || count != 1 {
			t.Errorf("Notify() = %d, count = %d, want 1 and 1", n, count)
		}

		f.view.Unload(true)
		f.view.Notify("x")
		if count != 1 {
			t.Errorf("callback fired %d times after Unload, want 1 total", count)
		}
	})

	t.Run("notify on inactive view", func(t *testing.T) {
		f := newFixture(t, Options{})

		count := 0
		f.view.AddListener("x", func() { count++ })
		f.view.Notify("x")
		if count != 1 {
			t.Errorf("Notify on inactive view fired %d times, want 1", count)
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		f := newFixture(t, Options{})

		count := 0
		id := f.view.AddListener("x", func() { count++ })
		f.view.AddListener("y", func() { count++ })
		f.view.AddListener("z", func() { count++ })

		if !f.view.RemoveListener("x", id) {
			t.Error("RemoveListener() = false")
		}
		f.view.ClearListeners("y")
		f.view.Notify("x")
		f.view.Notify("y")
		if count != 0 {
			t.Errorf("removed listeners fired %d times", count)
		}

		f.view.ClearAllListeners()
		if f.view.Notify("z") != 0 {
			t.Error("ClearAllListeners should remove every key")
		}
	})
}

func TestDetach(t *testing.T) {
	t.Run("active view", func(t *testing.T) {
		f := newFixture(t, Options{ShowOnLoad: true})
		f.load(t)
		calls := len(f.handle.history())

		f.view.Detach()

		if f.view.Active() {
			t.Error("detached view should be inactive")
		}
		if _, cleanups := f.lc.counts(); cleanups != 1 {
			t.Errorf("Cleanup called %d times, want 1", cleanups)
		}
		if len(f.handle.history()) != calls {
			t.Errorf("Detach must not touch the destroyed object, history = %v", f.handle.history())
		}
		if !f.view.Destroyed() {
			t.Error("Destroyed() = false after Detach")
		}
		if err := f.view.Load(context.Background()); !errors.Is(err, errors.ErrDestroyed) {
			t.Errorf("Load() after Detach error = %v, want destroyed", err)
		}
	})

	t.Run("inactive view", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.view.Detach()

		if !f.view.Destroyed() {
			t.Error("Destroyed() = false after Detach")
		}
		if _, cleanups := f.lc.counts(); cleanups != 0 {
			t.Errorf("Cleanup called %d times, want 0", cleanups)
		}
	})
}

type recordingDispatcher struct {
	mu     sync.Mutex
	phases []Phase
}

func (d *recordingDispatcher) Dispatch(p Phase, viewID string, h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.phases = append(d.phases, p)
}

func TestSideChannels(t *testing.T) {
	bus := event.NewBus(nil)
	var types []string
	bus.SubscribeAll(func(e event.Event) { types = append(types, e.EventType()) })

	d := &recordingDispatcher{}
	f := newFixture(t, Options{ShowOnLoad: true, Bus: bus, Dispatcher: d, ContainerID: "c"})
	f.load(t)
	_ = f.view.Hide(false)
	f.clock.Advance(DefaultHideDelay)
	_ = f.view.Show()
	_ = f.view.Hide(true)
	f.view.Unload(true)

	wantTypes := []string{
		event.TypeViewLoaded,
		event.TypeViewShown,
		event.TypeViewHidden,
		event.TypeViewHideComplete,
		event.TypeViewShown,
		event.TypeViewHidden,
		event.TypeViewUnloaded,
	}
	if len(types) != len(wantTypes) {
		t.Fatalf("events = %v, want %v", types, wantTypes)
	}
	for i := range wantTypes {
		if types[i] != wantTypes[i] {
			t.Errorf("events[%d] = %q, want %q", i, types[i], wantTypes[i])
		}
	}

	wantPhases := []Phase{PhaseLoad, PhaseShow, PhaseHide, PhaseShow, PhaseHide, PhaseUnload}
	if len(d.phases) != len(wantPhases) {
		t.Fatalf("phases = %v, want %v", d.phases, wantPhases)
	}
	for i := range wantPhases {
		if d.phases[i] != wantPhases[i] {
			t.Errorf("phases[%d] = %v, want %v", i, d.phases[i], wantPhases[i])
		}
	}
}

func TestLoadFailedEvent(t *testing.T) {
	bus := event.NewBus(nil)
	var failed event.ViewLoadFailedEvent
	bus.Subscribe(event.TypeViewLoadFailed, func(e event.Event) {
		failed = e.(event.ViewLoadFailedEvent)
	})

	f := newFixture(t, Options{Bus: bus})
	f.lc.setupFn = func(ctx context.Context) error { return stderrors.New("nope") }
	_ = f.view.Load(context.Background())

	if failed.ViewID != "test-view" {
		t.Errorf("failed event view = %q, want test-view", failed.ViewID)
	}
	if !errors.Is(failed.Err, errors.ErrSetupFailed) {
		t.Errorf("failed event error = %v, want setup failure", failed.Err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnloaded, "unloaded"},
		{StateLoading, "loading"},
		{StateActiveHidden, "active_hidden"},
		{StateActiveVisible, "active_visible"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}

	if StateLoading.Active() || !StateActiveHidden.Active() || !StateActiveVisible.Active() {
		t.Error("State.Active() misclassifies states")
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range Phases() {
		got, ok := ParsePhase(p.String())
		if !ok || got != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParsePhase("resize"); ok {
		t.Error("ParsePhase should reject unknown names")
	}
	if Phase(9).String() != "unknown" {
		t.Error("unknown phase should stringify as unknown")
	}
}

func TestLifecycleFuncs(t *testing.T) {
	var zero LifecycleFuncs
	if err := zero.Setup(context.Background()); err != nil {
		t.Errorf("zero Setup() error = %v", err)
	}
	zero.Cleanup()

	cleaned := false
	lc := LifecycleFuncs{
		SetupFunc:   func(ctx context.Context) error { return stderrors.New("x") },
		CleanupFunc: func() { cleaned = true },
	}
	if err := lc.Setup(context.Background()); err == nil {
		t.Error("Setup() should return SetupFunc's error")
	}
	lc.Cleanup()
	if !cleaned {
		t.Error("Cleanup() should call CleanupFunc")
	}
}
