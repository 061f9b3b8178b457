package host

import (
	"sync"

	"github.com/Iron-Ham/viewkit/internal/view"
)

var _ view.Handle = (*Object)(nil)

// Object is an in-memory visual object. It records every visibility change
// so callers can inspect what a view did to it.
type Object struct {
	name string

	mu        sync.Mutex
	visible   bool
	destroyed bool
	toggles   int
}

// NewObject creates a visible object, matching how a freshly instantiated
// scene object starts out.
func NewObject(name string) *Object {
	return &Object{name: name, visible: true}
}

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// SetVisible changes visibility. Destroyed objects ignore it.
func (o *Object) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed || o.visible == visible {
		return
	}
	o.visible = visible
	o.toggles++
}

// Visible reports visibility. A destroyed object is never visible.
func (o *Object) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible && !o.destroyed
}

// Destroy releases the object. Further calls are no-ops.
func (o *Object) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.destroyed = true
	o.visible = false
}

// Destroyed reports whether Destroy has been called.
func (o *Object) Destroyed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.destroyed
}

// Toggles returns how many times visibility actually changed.
func (o *Object) Toggles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.toggles
}
