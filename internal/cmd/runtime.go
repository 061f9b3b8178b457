package cmd

import (
	"context"
	"sync/atomic"

	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/config"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/executor"
	"github.com/Iron-Ham/viewkit/internal/host"
	"github.com/Iron-Ham/viewkit/internal/logging"
	"github.com/Iron-Ham/viewkit/internal/view"
)

// runtime is everything a command needs to drive a scene built from config.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	bus      *event.Bus
	executor *executor.Executor
	scene    *host.Scene
	counts   [len(phases)]atomic.Int64
}

var phases = [...]view.Phase{view.PhaseLoad, view.PhaseShow, view.PhaseHide, view.PhaseUnload}

// newLogger builds the logger described by cfg. fallbackDir is used when
// logging is enabled without a directory and stderr is not an option.
func newLogger(cfg config.LoggingConfig, fallbackDir string) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NopLogger(), nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = fallbackDir
	}
	return logging.NewLogger(dir, cfg.Level)
}

// newRuntime wires the scene, bus and executor for cfg. Every configured
// view is spawned but not loaded.
func newRuntime(cfg *config.Config, logger *logging.Logger, clk clock.Clock) (*runtime, error) {
	if clk == nil {
		clk = clock.Real()
	}

	exec := executor.New(executor.Config{
		Workers:     cfg.Executor.Workers,
		HookTimeout: cfg.Executor.HookTimeout(),
		Async:       cfg.Executor.Async,
	}, logger)

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		bus:      event.NewBus(logger),
		executor: exec,
	}
	if err := rt.registerHooks(); err != nil {
		exec.Close()
		return nil, err
	}

	rt.scene = host.NewScene(host.SceneOptions{
		Clock:      clk,
		Logger:     logger,
		Bus:        rt.bus,
		Dispatcher: exec,
	})
	for _, spec := range cfg.ViewSpecs() {
		if _, err := rt.scene.Spawn(spec); err != nil {
			rt.Close()
			return nil, err
		}
	}
	return rt, nil
}

// registerHooks installs the built-in lifecycle hooks: a trace hook and a
// counter for every phase.
func (rt *runtime) registerHooks() error {
	for _, phase := range phases {
		log := rt.logger.WithPhase(phase.String())
		if err := rt.executor.Register(executor.Hook{
			Name:  "trace",
			Phase: phase,
			Run: func(_ context.Context, viewID string, h view.Handle) {
				log.Debug("lifecycle hook", "view_id", viewID, "visible", h.Visible())
			},
		}); err != nil {
			return err
		}

		counter := &rt.counts[phase]
		if err := rt.executor.Register(executor.Hook{
			Name:  "count",
			Phase: phase,
			Order: 10,
			Run: func(context.Context, string, view.Handle) {
				counter.Add(1)
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

// PhaseCount returns how many times hooks ran for phase.
func (rt *runtime) PhaseCount(phase view.Phase) int64 {
	return rt.counts[phase].Load()
}

// Close unloads the scene and stops the executor.
func (rt *runtime) Close() {
	if rt.scene != nil {
		rt.scene.Shutdown()
	}
	rt.executor.Close()
}
