package listener

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/viewkit/internal/logging"
)

// Key identifies an event category.
type Key string

// Callback is a zero-argument listener.
type Callback func()

// ID identifies a single registration. The zero ID is never issued.
type ID uint64

type entry struct {
	id       ID
	callback Callback
}

// Registry maps keys to ordered callback lists.
type Registry struct {
	mu        sync.RWMutex
	listeners map[Key][]entry
	nextID    atomic.Uint64
	logger    *logging.Logger
}

// NewRegistry creates an empty registry. A nil logger discards panic reports.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		listeners: make(map[Key][]entry),
		logger:    logger,
	}
}

// Add appends cb to the list for key and returns its registration ID.
// A nil callback is ignored and the zero ID is returned.
func (r *Registry) Add(key Key, cb Callback) ID {
	if cb == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := ID(r.nextID.Add(1))
	r.listeners[key] = append(r.listeners[key], entry{id: id, callback: cb})
	return id
}

// Remove deletes the registration id from key.
// Returns true if a registration was removed.
func (r *Registry) Remove(key Key, id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.listeners[key]
	for i, e := range entries {
		if e.id == id {
			r.listeners[key] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every listener registered under key.
func (r *Registry) Clear(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listeners[key]; ok {
		r.listeners[key] = nil
	}
}

// ClearAll removes every key.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = make(map[Key][]entry)
}

// Notify invokes every callback registered under key at the time of the
// call, in insertion order, and returns how many were invoked.
func (r *Registry) Notify(key Key) int {
	r.mu.RLock()
	snapshot := make([]entry, len(r.listeners[key]))
	copy(snapshot, r.listeners[key])
	r.mu.RUnlock()

	for _, e := range snapshot {
		r.safeCall(key, e)
	}
	return len(snapshot)
}

// safeCall invokes a callback and recovers from any panic so one misbehaving
// listener cannot block delivery to the others.
func (r *Registry) safeCall(key Key, e entry) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("listener panicked",
				"key", string(key),
				"listener_id", uint64(e.id),
				"panic", rec,
				"stack", string(debug.Stack()))
		}
	}()
	e.callback()
}

// Len returns the number of listeners registered under key.
func (r *Registry) Len(key Key) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[key])
}

// Count returns the total number of registrations across all keys.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entries := range r.listeners {
		count += len(entries)
	}
	return count
}

// Keys returns the keys that currently have at least one listener.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.listeners))
	for k, entries := range r.listeners {
		if len(entries) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}
