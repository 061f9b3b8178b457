package view

// State is the observable lifecycle state of a View.
type State int

const (
	// StateUnloaded is the initial and terminal state.
	StateUnloaded State = iota
	// StateLoading means Load is waiting for Setup to complete.
	StateLoading
	// StateActiveHidden means the view is loaded and its visual object is hidden.
	StateActiveHidden
	// StateActiveVisible means the view is loaded and its visual object is shown.
	StateActiveVisible
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateActiveHidden:
		return "active_hidden"
	case StateActiveVisible:
		return "active_visible"
	default:
		return "unknown"
	}
}

// Active reports whether s is one of the active states.
func (s State) Active() bool {
	return s == StateActiveHidden || s == StateActiveVisible
}

// Phase names a lifecycle transition handed to a Dispatcher.
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseShow
	PhaseHide
	PhaseUnload
)

func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load"
	case PhaseShow:
		return "show"
	case PhaseHide:
		return "hide"
	case PhaseUnload:
		return "unload"
	default:
		return "unknown"
	}
}

// Phases returns every phase in lifecycle order.
func Phases() []Phase {
	return []Phase{PhaseLoad, PhaseShow, PhaseHide, PhaseUnload}
}

// ParsePhase converts a phase name back to a Phase.
func ParsePhase(name string) (Phase, bool) {
	for _, p := range Phases() {
		if p.String() == name {
			return p, true
		}
	}
	return 0, false
}
