// Package event defines view lifecycle events and the bus that carries them.
package event

import "time"

// Event types published by view controllers.
const (
	TypeViewLoaded       = "view.loaded"
	TypeViewLoadFailed   = "view.load_failed"
	TypeViewShown        = "view.shown"
	TypeViewHidden       = "view.hidden"
	TypeViewHideComplete = "view.hide_completed"
	TypeViewUnloaded     = "view.unloaded"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "view.shown").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// ViewRef identifies the view an event refers to.
type ViewRef struct {
	ViewID      string
	ContainerID string
}

// Ref returns r. It is promoted into every view event.
func (r ViewRef) Ref() ViewRef { return r }

// ViewEvent is an Event about a single view.
type ViewEvent interface {
	Event
	Ref() ViewRef
}

// ViewLoadedEvent is emitted when Load completes and the view becomes active.
type ViewLoadedEvent struct {
	baseEvent
	ViewRef
	Duration time.Duration // Time spent in Setup
}

// NewViewLoadedEvent creates a ViewLoadedEvent.
func NewViewLoadedEvent(ref ViewRef, d time.Duration) ViewLoadedEvent {
	return ViewLoadedEvent{baseEvent: newBaseEvent(TypeViewLoaded), ViewRef: ref, Duration: d}
}

// ViewLoadFailedEvent is emitted when Setup fails or the load is superseded.
type ViewLoadFailedEvent struct {
	baseEvent
	ViewRef
	Err error
}

// NewViewLoadFailedEvent creates a ViewLoadFailedEvent.
func NewViewLoadFailedEvent(ref ViewRef, err error) ViewLoadFailedEvent {
	return ViewLoadFailedEvent{baseEvent: newBaseEvent(TypeViewLoadFailed), ViewRef: ref, Err: err}
}

// ViewShownEvent is emitted after the visual object became visible.
type ViewShownEvent struct {
	baseEvent
	ViewRef
}

// NewViewShownEvent creates a ViewShownEvent.
func NewViewShownEvent(ref ViewRef) ViewShownEvent {
	return ViewShownEvent{baseEvent: newBaseEvent(TypeViewShown), ViewRef: ref}
}

// ViewHiddenEvent is emitted when Hide is accepted. For a delayed hide the
// visual object is still visible; a ViewHideCompletedEvent follows.
type ViewHiddenEvent struct {
	baseEvent
	ViewRef
	Instant bool
	Delay   time.Duration
}

// NewViewHiddenEvent creates a ViewHiddenEvent.
func NewViewHiddenEvent(ref ViewRef, instant bool, delay time.Duration) ViewHiddenEvent {
	return ViewHiddenEvent{baseEvent: newBaseEvent(TypeViewHidden), ViewRef: ref, Instant: instant, Delay: delay}
}

// ViewHideCompletedEvent is emitted when a delayed hide toggles visibility off.
type ViewHideCompletedEvent struct {
	baseEvent
	ViewRef
}

// NewViewHideCompletedEvent creates a ViewHideCompletedEvent.
func NewViewHideCompletedEvent(ref ViewRef) ViewHideCompletedEvent {
	return ViewHideCompletedEvent{baseEvent: newBaseEvent(TypeViewHideComplete), ViewRef: ref}
}

// ViewUnloadedEvent is emitted after Unload released the view.
type ViewUnloadedEvent struct {
	baseEvent
	ViewRef
	Destroyed bool
}

// NewViewUnloadedEvent creates a ViewUnloadedEvent.
func NewViewUnloadedEvent(ref ViewRef, destroyed bool) ViewUnloadedEvent {
	return ViewUnloadedEvent{baseEvent: newBaseEvent(TypeViewUnloaded), ViewRef: ref, Destroyed: destroyed}
}
