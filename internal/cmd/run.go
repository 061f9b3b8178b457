package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/viewkit/internal/config"
	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/host"
	"github.com/Iron-Ham/viewkit/internal/view"
)

var runKeepGoing bool

var runCmd = &cobra.Command{
	Use:   "run [op:target...]",
	Short: "Drive the configured views through a scripted lifecycle",
	Long: `Run spawns every configured view and applies the given steps in order.
Each step is written as op:target.

Operations:
  load:<view>      run the view's setup and activate it
  show:<view>      make the view visible
  hide:<view>      hide the view after its hide delay
  hide!:<view>     hide the view immediately
  unload:<view>    deactivate the view and keep its object
  destroy:<view>   deactivate the view and destroy its object
  detach:<view>    destroy the object from the host side
  wait:<duration>  pause, e.g. wait:1.5s

Without steps every view is loaded, shown, hidden and unloaded.

Examples:
  viewkit run
  viewkit run load:toast show:toast hide:toast wait:2s unload:toast`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runKeepGoing, "keep-going", "k", false, "continue after a failing step")
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	stepStyle = lipgloss.NewStyle().Width(22)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging, "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	rt, err := newRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	steps, err := ParseScript(args)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		steps = DefaultScript(cfg.ViewSpecs())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &scriptRunner{
		scene:     rt.scene,
		trail:     newTrail(rt.bus, rt.scene),
		out:       cmd.OutOrStdout(),
		sleep:     sleepContext,
		keepGoing: runKeepGoing,
	}
	runErr := r.Run(ctx, steps)

	rt.executor.Wait()
	stats := rt.executor.Stats()
	fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf(
		"hooks: %d dispatches, %d runs, %d panics | load=%d show=%d hide=%d unload=%d",
		stats.Dispatches, stats.Runs, stats.Panics,
		rt.PhaseCount(view.PhaseLoad), rt.PhaseCount(view.PhaseShow), rt.PhaseCount(view.PhaseHide), rt.PhaseCount(view.PhaseUnload),
	)))
	return runErr
}

// trail collects the events published for each view between two reports.
type trail struct {
	mu     sync.Mutex
	byView map[string][]string
}

func newTrail(bus *event.Bus, scene *host.Scene) *trail {
	t := &trail{byView: make(map[string][]string)}
	for _, entry := range scene.Entries() {
		id := entry.View.ID()
		bus.SubscribeView(id, func(e event.Event) {
			t.mu.Lock()
			t.byView[id] = append(t.byView[id], strings.TrimPrefix(e.EventType(), "view."))
			t.mu.Unlock()
		})
	}
	return t
}

// drain returns and forgets the events collected for id.
func (t *trail) drain(id string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := t.byView[id]
	delete(t.byView, id)
	return events
}

// scriptRunner applies steps to a scene and reports each one.
type scriptRunner struct {
	scene     *host.Scene
	trail     *trail
	out       io.Writer
	sleep     func(context.Context, time.Duration) error
	keepGoing bool
}

// Run applies steps in order. It stops at the first failing step unless
// keepGoing is set, in which case the failures are joined.
func (r *scriptRunner) Run(ctx context.Context, steps []Step) error {
	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := apply(ctx, r.scene, step, r.sleep)
		r.report(step, err)
		if err == nil {
			continue
		}
		err = errors.Wrapf(err, "step %s", step)
		if !r.keepGoing {
			return err
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *scriptRunner) report(step Step, err error) {
	line := stepStyle.Render(step.String())
	switch {
	case err != nil:
		line = failStyle.Render("✗ ") + line + failStyle.Render(err.Error())
	case step.Op == OpWait:
		line = dimStyle.Render("· ") + line
	default:
		line = okStyle.Render("✓ ") + line + r.state(step.Target)
		if r.trail != nil {
			if events := r.trail.drain(step.Target); len(events) > 0 {
				line += dimStyle.Render("  " + strings.Join(events, " "))
			}
		}
	}
	fmt.Fprintln(r.out, line)
}

func (r *scriptRunner) state(id string) string {
	entry, err := r.scene.Get(id)
	if err != nil {
		return ""
	}
	return dimStyle.Render(entry.View.State().String())
}
