package reactor

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the observable state of a Loop.
type State int32

const (
	// Idle means the loop is not processing tasks.
	Idle State = iota
	// Running means a goroutine is inside Run.
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	// ErrAlreadyRunning is returned by Run when the loop is already running.
	ErrAlreadyRunning = errors.New("event loop already running")
	// ErrNotRunning is returned by Stop when the loop is idle.
	ErrNotRunning = errors.New("event loop not running")
)

// Option customizes a Loop.
type Option func(*Loop)

// WithPanicHandler installs fn to receive values recovered from panicking
// tasks. Without a handler the panic is re-raised on the Run goroutine.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(l *Loop) {
		if fn != nil {
			l.observers = append(l.observers, fn)
		}
	}
}

// Loop is a single-threaded task queue.
type Loop struct {
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	state    State
	stopping bool

	onPanic   func(any)
	observers []func(State)
}

// New constructs an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{wake: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports the current loop state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Running reports whether the loop is inside Run.
func (l *Loop) Running() bool {
	return l.State() == Running
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine, including before Run starts.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// Run processes queued tasks until Stop is called or ctx is done. It returns
// nil after a Stop and ctx.Err() when the context ends the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.state == Running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.state = Running
	l.stopping = false
	l.mu.Unlock()
	l.notify(Running)

	defer func() {
		l.mu.Lock()
		l.state = Idle
		l.stopping = false
		l.mu.Unlock()
		l.notify(Idle)
	}()

	for {
		task, stop := l.next()
		if stop {
			return nil
		}
		if task != nil {
			l.runTask(task)
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop asks a running loop to return from Run once the current task finishes.
// Repeated calls while the stop is pending are no-ops.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if l.state != Running {
		l.mu.Unlock()
		return ErrNotRunning
	}
	l.stopping = true
	l.mu.Unlock()
	l.signal()
	return nil
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopping {
		return nil, true
	}
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, false
}

func (l *Loop) runTask(task func()) {
	if l.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				l.onPanic(r)
			}
		}()
	}
	task()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) notify(state State) {
	for _, fn := range l.observers {
		fn(state)
	}
}
