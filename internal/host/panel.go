package host

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/viewkit/internal/assetref"
	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/logging"
	"github.com/Iron-Ham/viewkit/internal/view"
)

var _ view.Lifecycle = (*Panel)(nil)

// Stage is one step of a panel's setup. Duration simulates the time the
// step takes, for example an asset download.
type Stage struct {
	Name     string        `yaml:"name" mapstructure:"name"`
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
}

// PanelConfig describes a demo panel.
type PanelConfig struct {
	Background string   `asset:"bundle" yaml:"background" mapstructure:"background"`
	Icons      []string `asset:"bundle,optional" yaml:"icons" mapstructure:"icons"`
	Stages     []Stage  `yaml:"stages" mapstructure:"stages"`
	// FailStage names a stage that fails, for exercising error paths.
	FailStage string `yaml:"fail_stage" mapstructure:"fail_stage"`
}

// Panel is a view.Lifecycle that loads its asset bundles and then runs its
// stages in order. Everything it acquires is released by Cleanup.
type Panel struct {
	cfg    PanelConfig
	clock  clock.Clock
	logger *logging.Logger

	mu       sync.Mutex
	acquired []string
	setups   int
	cleanups int
}

// NewPanel creates a panel. Nil clock and logger fall back to the real clock
// and a discarding logger.
func NewPanel(cfg PanelConfig, clk clock.Clock, logger *logging.Logger) *Panel {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Panel{cfg: cfg, clock: clk, logger: logger}
}

// Setup validates the asset references, acquires each bundle and runs the
// stages. It returns ctx.Err() as soon as ctx is cancelled. On any failure
// it releases what this call acquired, since Cleanup only follows a
// successful Setup.
func (p *Panel) Setup(ctx context.Context) (err error) {
	p.mu.Lock()
	p.setups++
	mark := len(p.acquired)
	p.mu.Unlock()
	defer func() {
		if err != nil {
			p.rollback(mark)
		}
	}()

	refs, err := assetref.Scan(p.cfg)
	if err != nil {
		return err
	}
	if err := assetref.Validate(refs); err != nil {
		return errors.NewSetupError("panel has unresolved asset references", err)
	}
	for _, bundle := range assetref.Bundles(refs) {
		p.acquire("bundle:" + bundle)
	}

	for _, stage := range p.cfg.Stages {
		p.logger.Debug("panel stage started", "stage", stage.Name, "duration", stage.Duration.String())
		if err := sleep(ctx, p.clock, stage.Duration); err != nil {
			return err
		}
		if stage.Name == p.cfg.FailStage {
			return errors.NewSetupError(fmt.Sprintf("stage %q failed", stage.Name), nil).WithRetryable(true)
		}
		p.acquire("stage:" + stage.Name)
	}
	return nil
}

// Cleanup releases every acquired resource.
func (p *Panel) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleanups++
	if len(p.acquired) > 0 {
		p.logger.Debug("panel released resources", "count", len(p.acquired))
	}
	p.acquired = nil
}

// rollback drops every resource acquired past index mark.
func (p *Panel) rollback(mark int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mark < len(p.acquired) {
		p.logger.Debug("panel rolled back partial setup", "count", len(p.acquired)-mark)
		p.acquired = p.acquired[:mark]
	}
}

func (p *Panel) acquire(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired = append(p.acquired, name)
}

// Acquired returns the resources currently held.
func (p *Panel) Acquired() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.acquired)
}

// Counts returns how many times Setup and Cleanup have run.
func (p *Panel) Counts() (setups, cleanups int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setups, p.cleanups
}

// sleep waits d on clk or until ctx is done.
func sleep(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	t := clk.AfterFunc(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}
