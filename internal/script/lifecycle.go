package script

import "sync/atomic"

// State is a step of a script invocation.
type State int32

const (
	Created State = iota
	Configured
	Ran
	Exited
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Configured:
		return "configured"
	case Ran:
		return "ran"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Lifecycle records the state of the most recent invocation of a Script.
type Lifecycle struct {
	state atomic.Int32
	// OnTransition is called for every state change when set.
	OnTransition func(State)
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

func (l *Lifecycle) enter(state State) {
	l.state.Store(int32(state))
	if l.OnTransition != nil {
		l.OnTransition(state)
	}
}
