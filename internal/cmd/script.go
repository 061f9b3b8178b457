package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Iron-Ham/viewkit/internal/errors"
	"github.com/Iron-Ham/viewkit/internal/host"
)

// Step operations understood by the run command.
const (
	OpLoad        = "load"
	OpShow        = "show"
	OpHide        = "hide"
	OpHideInstant = "hide!"
	OpUnload      = "unload"
	OpDestroy     = "destroy"
	OpDetach      = "detach"
	OpWait        = "wait"
)

var validOps = []string{OpLoad, OpShow, OpHide, OpHideInstant, OpUnload, OpDestroy, OpDetach, OpWait}

// Step is one scripted lifecycle action, written as "op:target" on the
// command line. For OpWait the target is a duration.
type Step struct {
	Op     string
	Target string
	Wait   time.Duration
}

func (s Step) String() string {
	if s.Op == OpWait {
		return fmt.Sprintf("%s:%s", s.Op, s.Wait)
	}
	return fmt.Sprintf("%s:%s", s.Op, s.Target)
}

// ParseStep parses a single "op:target" step.
func ParseStep(raw string) (Step, error) {
	op, target, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || target == "" {
		return Step{}, errors.NewValidationError("step must be written as op:target").WithField("step").WithValue(raw)
	}

	switch op {
	case OpWait:
		d, err := cast.ToDurationE(target)
		if err != nil || d < 0 {
			return Step{}, errors.NewValidationError("wait needs a non-negative duration").WithField("step").WithValue(raw)
		}
		return Step{Op: op, Wait: d}, nil
	case OpLoad, OpShow, OpHide, OpHideInstant, OpUnload, OpDestroy, OpDetach:
		return Step{Op: op, Target: target}, nil
	default:
		return Step{}, errors.NewValidationError(
			fmt.Sprintf("unknown operation %q, valid operations: %s", op, strings.Join(validOps, ", ")),
		).WithField("step").WithValue(raw)
	}
}

// ParseScript parses every step, reporting all malformed ones together.
func ParseScript(args []string) ([]Step, error) {
	steps := make([]Step, 0, len(args))
	var errs []error
	for _, arg := range args {
		step, err := ParseStep(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		steps = append(steps, step)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return steps, nil
}

// DefaultScript loads and shows every view, hides them with their delay,
// waits for the longest delay to elapse and unloads everything.
func DefaultScript(specs []host.ViewSpec) []Step {
	var longest time.Duration
	steps := make([]Step, 0, len(specs)*4+1)
	for _, spec := range specs {
		steps = append(steps, Step{Op: OpLoad, Target: spec.ID})
	}
	for _, spec := range specs {
		steps = append(steps, Step{Op: OpShow, Target: spec.ID})
	}
	for _, spec := range specs {
		steps = append(steps, Step{Op: OpHide, Target: spec.ID})
		longest = max(longest, spec.HideDelay)
	}
	steps = append(steps, Step{Op: OpWait, Wait: longest + 100*time.Millisecond})
	for _, spec := range specs {
		steps = append(steps, Step{Op: OpUnload, Target: spec.ID})
	}
	return steps
}

// apply performs step against scene. Waiting goes through sleep so tests
// can drive a fake clock instead.
func apply(ctx context.Context, scene *host.Scene, step Step, sleep func(context.Context, time.Duration) error) error {
	if step.Op == OpWait {
		return sleep(ctx, step.Wait)
	}

	if step.Op == OpDetach {
		return scene.DestroyObject(step.Target)
	}

	entry, err := scene.Get(step.Target)
	if err != nil {
		return err
	}
	v := entry.View

	switch step.Op {
	case OpLoad:
		return v.Load(ctx)
	case OpShow:
		return v.Show()
	case OpHide:
		return v.Hide(false)
	case OpHideInstant:
		return v.Hide(true)
	case OpUnload:
		v.Unload(false)
	case OpDestroy:
		v.Unload(true)
	}
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
