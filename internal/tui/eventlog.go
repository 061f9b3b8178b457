package tui

import (
	"fmt"
	"sync"

	"github.com/Iron-Ham/viewkit/internal/event"
)

// eventLog keeps the most recent lifecycle events for display. Bus handlers
// append to it from whichever goroutine publishes, so it is locked.
type eventLog struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func newEventLog(limit int) *eventLog {
	return &eventLog{limit: limit}
}

func (l *eventLog) add(e event.Event) {
	line := fmt.Sprintf("%s %s", e.Timestamp().Format("15:04:05.000"), describe(e))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append(l.lines[:0:0], l.lines[over:]...)
	}
}

func (l *eventLog) setLimit(limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit = limit
	if over := len(l.lines) - limit; over > 0 {
		l.lines = append(l.lines[:0:0], l.lines[over:]...)
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// describe renders one event as a short line.
func describe(e event.Event) string {
	switch ev := e.(type) {
	case event.ViewLoadedEvent:
		return fmt.Sprintf("%s loaded in %s", ev.ViewID, ev.Duration)
	case event.ViewLoadFailedEvent:
		return fmt.Sprintf("%s failed to load: %v", ev.ViewID, ev.Err)
	case event.ViewShownEvent:
		return fmt.Sprintf("%s shown", ev.ViewID)
	case event.ViewHiddenEvent:
		if ev.Instant {
			return fmt.Sprintf("%s hidden instantly", ev.ViewID)
		}
		return fmt.Sprintf("%s hiding (%s)", ev.ViewID, ev.Delay)
	case event.ViewHideCompletedEvent:
		return fmt.Sprintf("%s hide completed", ev.ViewID)
	case event.ViewUnloadedEvent:
		if ev.Destroyed {
			return fmt.Sprintf("%s unloaded and destroyed", ev.ViewID)
		}
		return fmt.Sprintf("%s unloaded", ev.ViewID)
	default:
		return e.EventType()
	}
}
