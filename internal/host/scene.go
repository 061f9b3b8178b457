package host

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/logging"
	"github.com/Iron-Ham/viewkit/internal/view"
)

// ViewSpec describes one view to spawn in a Scene.
type ViewSpec struct {
	ID          string
	ContainerID string
	ShowOnLoad  bool
	HideDelay   time.Duration
	Panel       PanelConfig
}

// Entry groups a spawned view with its visual object and lifecycle.
type Entry struct {
	View   *view.View
	Object *Object
	Panel  *Panel
}

// SceneOptions holds the collaborators shared by every view of a scene.
type SceneOptions struct {
	Clock      clock.Clock
	Logger     *logging.Logger
	Bus        *event.Bus
	Dispatcher view.Dispatcher
}

// Scene is a minimal host: it creates visual objects, binds them to views
// and keeps them addressable by view ID.
type Scene struct {
	opts SceneOptions

	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// NewScene creates an empty scene.
func NewScene(opts SceneOptions) *Scene {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	return &Scene{opts: opts, entries: make(map[string]*Entry)}
}

// Spawn creates the object, panel and view described by spec. The view is
// returned unloaded.
func (s *Scene) Spawn(spec ViewSpec) (*Entry, error) {
	if spec.ID == "" {
		return nil, errors.NewValidationError("view id is required").WithField("id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[spec.ID]; exists {
		return nil, errors.NewValidationError("view already exists in scene").WithField("id").WithValue(spec.ID)
	}

	obj := NewObject(spec.ID)
	panel := NewPanel(spec.Panel, s.opts.Clock, s.opts.Logger.WithView(spec.ID))
	v, err := view.New(obj, panel, view.Options{
		ID:          spec.ID,
		ContainerID: spec.ContainerID,
		ShowOnLoad:  spec.ShowOnLoad,
		HideDelay:   spec.HideDelay,
		Clock:       s.opts.Clock,
		Logger:      s.opts.Logger,
		Bus:         s.opts.Bus,
		Dispatcher:  s.opts.Dispatcher,
	})
	if err != nil {
		return nil, err
	}

	entry := &Entry{View: v, Object: obj, Panel: panel}
	s.entries[spec.ID] = entry
	s.order = append(s.order, spec.ID)
	s.opts.Logger.Debug("view spawned", "view_id", spec.ID, "container_id", spec.ContainerID)
	return entry, nil
}

// Get returns the entry for id.
func (s *Scene) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, errors.NewNotFoundError("view", id)
	}
	return entry, nil
}

// Entries returns every entry in spawn order.
func (s *Scene) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id])
	}
	return entries
}

// Load loads the view with the given id.
func (s *Scene) Load(ctx context.Context, id string) error {
	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	return entry.View.Load(ctx)
}

// DestroyObject destroys the visual object behind id from the host side,
// the way a scene unload would, and tells the view about it.
func (s *Scene) DestroyObject(id string) error {
	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	entry.Object.Destroy()
	entry.View.Detach()
	return nil
}

// Remove unloads the view, destroying its object, and forgets it.
func (s *Scene) Remove(id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return errors.NewNotFoundError("view", id)
	}
	delete(s.entries, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.mu.Unlock()

	entry.View.Unload(true)
	return nil
}

// Shutdown unloads every view and destroys every object.
func (s *Scene) Shutdown() {
	for _, entry := range s.Entries() {
		entry.View.Unload(true)
		if !entry.Object.Destroyed() {
			entry.Object.Destroy()
		}
	}
}
