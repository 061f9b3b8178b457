package view

import (
	"time"

	"github.com/Iron-Ham/viewkit/internal/clock"
	"github.com/Iron-Ham/viewkit/internal/event"
	"github.com/Iron-Ham/viewkit/internal/logging"
)

// DefaultHideDelay is how long a non-instant Hide keeps the visual object
// visible after firing the hide event.
const DefaultHideDelay = 5 * time.Second

// Options configures a View. The zero value is valid.
type Options struct {
	// ID identifies the view in logs and bus events. A random UUID is used
	// when empty.
	ID string
	// ContainerID is an opaque placement hint passed through to the host.
	ContainerID string
	// ShowOnLoad makes Load call Show once Setup has completed.
	ShowOnLoad bool
	// HideDelay overrides DefaultHideDelay. Negative values mean no delay.
	HideDelay time.Duration

	Clock      clock.Clock
	Logger     *logging.Logger
	Bus        *event.Bus
	Dispatcher Dispatcher

	// OnShow and OnHide are persistent lifecycle subscriptions. Unlike
	// listeners added with AddListener they survive Unload.
	OnShow []func()
	OnHide []func()
}

func (o Options) hideDelay() time.Duration {
	switch {
	case o.HideDelay == 0:
		return DefaultHideDelay
	case o.HideDelay < 0:
		return 0
	default:
		return o.HideDelay
	}
}
