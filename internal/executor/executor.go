package executor

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/logging"
	"github.com/Iron-Ham/viewkit/internal/view"
)

// DefaultWorkers is the pool size used when Config.Workers is not positive.
const DefaultWorkers = 4

// HookFunc is the body of a hook. ctx is cancelled when the hook times out
// or the executor is closed.
type HookFunc func(ctx context.Context, viewID string, h view.Handle)

// Hook is a unit of work run for every view reaching Phase.
type Hook struct {
	Name  string
	Phase view.Phase
	// Order groups hooks. Lower orders run first.
	Order int
	Run   HookFunc
}

// Config controls the executor.
type Config struct {
	// Workers bounds how many hooks of one order group run at once.
	Workers int
	// HookTimeout bounds each hook. Zero means no timeout.
	HookTimeout time.Duration
	// Async makes Dispatch return before the hooks have run.
	Async bool
}

// Stats counts hook executions since the executor was created.
type Stats struct {
	Dispatches int64
	Runs       int64
	Panics     int64
}

var _ view.Dispatcher = (*Executor)(nil)

// Executor dispatches lifecycle phases to registered hooks.
// All methods are safe for concurrent use.
type Executor struct {
	cfg    Config
	logger *logging.Logger

	mu     sync.RWMutex
	hooks  map[view.Phase][]Hook
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	dispatches atomic.Int64
	runs       atomic.Int64
	panics     atomic.Int64
}

// New creates an executor. A nil logger discards output.
func New(cfg Config, logger *logging.Logger) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		cfg:    cfg,
		logger: logger.With("component", "executor"),
		hooks:  make(map[view.Phase][]Hook),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a hook. Hook names must be unique within a phase.
func (e *Executor) Register(h Hook) error {
	if h.Name == "" {
		return errors.NewValidationError("hook name is required").WithField("name")
	}
	if h.Run == nil {
		return errors.NewValidationError("hook has no body").WithField("run").WithValue(h.Name)
	}
	if _, ok := view.ParsePhase(h.Phase.String()); !ok {
		return errors.NewValidationError("unknown lifecycle phase").WithField("phase").WithValue(h.Phase.String())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.hooks[h.Phase] {
		if existing.Name == h.Name {
			return errors.NewValidationError(fmt.Sprintf("hook %q already registered for phase %s", h.Name, h.Phase)).
				WithField("name").
				WithValue(h.Name)
		}
	}
	hooks := append(e.hooks[h.Phase], h)
	slices.SortStableFunc(hooks, func(a, b Hook) int { return cmp.Compare(a.Order, b.Order) })
	e.hooks[h.Phase] = hooks
	return nil
}

// Unregister removes the named hook from phase.
func (e *Executor) Unregister(phase view.Phase, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	hooks := e.hooks[phase]
	for i, h := range hooks {
		if h.Name == name {
			e.hooks[phase] = append(hooks[:i], hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Hooks returns the hooks of phase in execution order.
func (e *Executor) Hooks(phase view.Phase) []Hook {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.hooks[phase])
}

// Dispatch implements view.Dispatcher. After Close it does nothing.
func (e *Executor) Dispatch(phase view.Phase, viewID string, h view.Handle) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		e.logger.Debug("dispatch after close ignored", "phase", phase.String(), "view_id", viewID)
		return
	}
	e.dispatches.Add(1)
	if e.cfg.Async {
		// Started under the read lock so Close cannot reach wg.Wait first.
		e.wg.Go(func() { e.Run(e.ctx, phase, viewID, h) })
		e.mu.RUnlock()
		return
	}
	e.mu.RUnlock()
	e.Run(e.ctx, phase, viewID, h)
}

// Run executes every hook of phase synchronously and returns how many ran.
// Order groups run one after another; hooks within a group share the pool.
// A cancelled ctx stops before the next group starts.
func (e *Executor) Run(ctx context.Context, phase view.Phase, viewID string, h view.Handle) int {
	groups := groupByOrder(e.Hooks(phase))
	ran := 0
	for _, group := range groups {
		if ctx.Err() != nil {
			e.logger.Warn("hook dispatch cancelled",
				"phase", phase.String(),
				"view_id", viewID,
				"skipped_order", group[0].Order,
			)
			break
		}

		p := pool.New().WithMaxGoroutines(e.cfg.Workers)
		for _, hook := range group {
			p.Go(func() { e.runHook(ctx, hook, viewID, h) })
		}
		p.Wait()
		ran += len(group)
	}
	return ran
}

func (e *Executor) runHook(ctx context.Context, hook Hook, viewID string, h view.Handle) {
	if e.cfg.HookTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.HookTimeout)
		defer cancel()
	}

	log := e.logger.WithPhase(hook.Phase.String()).WithView(viewID)
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			log.Error("hook panicked",
				"hook", hook.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	e.runs.Add(1)
	hook.Run(ctx, viewID, h)
	if ctx.Err() == context.DeadlineExceeded {
		log.Warn("hook exceeded timeout",
			"hook", hook.Name,
			"timeout", e.cfg.HookTimeout.String(),
		)
	}
}

// groupByOrder splits hooks, already sorted by Order, into runs of equal Order.
func groupByOrder(hooks []Hook) [][]Hook {
	var groups [][]Hook
	for i := 0; i < len(hooks); {
		j := i + 1
		for j < len(hooks) && hooks[j].Order == hooks[i].Order {
			j++
		}
		groups = append(groups, hooks[i:j])
		i = j
	}
	return groups
}

// Wait blocks until every asynchronously dispatched phase has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Close stops accepting dispatches, cancels running hooks and waits for
// them to return.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// Stats returns execution counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Dispatches: e.dispatches.Load(),
		Runs:       e.runs.Load(),
		Panics:     e.panics.Load(),
	}
}
