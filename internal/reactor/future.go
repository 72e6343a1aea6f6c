package reactor

import (
	"errors"
	"sync"
)

// ErrAlreadySettled is returned when a settled Future is resolved or rejected
// a second time.
var ErrAlreadySettled = errors.New("future already settled")

var errNilFuture = errors.New("continuation returned nil future")

// Future is a single-assignment cell holding either a value or an error that
// becomes available later. Callbacks run on the owning Loop.
type Future[T any] struct {
	loop *Loop

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns an unsettled future bound to loop.
func NewFuture[T any](loop *Loop) *Future[T] {
	return &Future[T]{loop: loop}
}

// Resolved returns a future already holding value.
func Resolved[T any](loop *Loop, value T) *Future[T] {
	f := NewFuture[T](loop)
	_ = f.Resolve(value)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](loop *Loop, err error) *Future[T] {
	f := NewFuture[T](loop)
	_ = f.Reject(err)
	return f
}

// Go runs fn on a new goroutine and settles the returned future with its
// result.
func Go[T any](loop *Loop, fn func() (T, error)) *Future[T] {
	f := NewFuture[T](loop)
	go func() {
		value, err := fn()
		if err != nil {
			_ = f.Reject(err)
			return
		}
		_ = f.Resolve(value)
	}()
	return f
}

// Loop returns the loop the future dispatches on.
func (f *Future[T]) Loop() *Loop {
	return f.loop
}

// Settled reports whether a value or error has been recorded.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Resolve records value. It may be called from any goroutine.
func (f *Future[T]) Resolve(value T) error {
	return f.settle(value, nil)
}

// Reject records err. A nil err is replaced so the error arm is never
// observed with a nil cause.
func (f *Future[T]) Reject(err error) error {
	if err == nil {
		err = errors.New("future rejected without cause")
	}
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(value T, err error) error {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return ErrAlreadySettled
	}
	f.settled = true
	f.value = value
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	if len(callbacks) > 0 {
		f.loop.Post(func() {
			for _, cb := range callbacks {
				cb(value, err)
			}
		})
	}
	return nil
}

// AddCallbacks attaches a success/error pair. Exactly one of them runs, on the
// loop goroutine, after every pair attached earlier. Either may be nil.
func (f *Future[T]) AddCallbacks(onValue func(T), onError func(error)) *Future[T] {
	cb := func(value T, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onValue != nil {
			onValue(value)
		}
	}

	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return f
	}
	value, err := f.value, f.err
	f.mu.Unlock()

	f.loop.Post(func() { cb(value, err) })
	return f
}

// Chain attaches a continuation pair whose futures decide the outcome of the
// returned future. A nil onError passes the error through unchanged.
func Chain[T, U any](f *Future[T], onValue func(T) *Future[U], onError func(error) *Future[U]) *Future[U] {
	out := NewFuture[U](f.loop)
	f.AddCallbacks(
		func(value T) {
			forward(onValue(value), out)
		},
		func(err error) {
			if onError == nil {
				_ = out.Reject(err)
				return
			}
			forward(onError(err), out)
		},
	)
	return out
}

// Bind chains a continuation that itself returns a future.
func Bind[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	return Chain(f, fn, nil)
}

// Then maps a successful value; errors pass through.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Handle(f, fn, nil)
}

// Handle attaches a plain continuation pair, the returned future settling with
// whichever arm ran. A nil onError passes the error through unchanged.
func Handle[T, U any](f *Future[T], onValue func(T) (U, error), onError func(error) (U, error)) *Future[U] {
	loop := f.loop
	var errArm func(error) *Future[U]
	if onError != nil {
		errArm = func(cause error) *Future[U] {
			value, err := onError(cause)
			return settled(loop, value, err)
		}
	}
	return Chain(f, func(in T) *Future[U] {
		value, err := onValue(in)
		return settled(loop, value, err)
	}, errArm)
}

func settled[U any](loop *Loop, value U, err error) *Future[U] {
	if err != nil {
		return Failed[U](loop, err)
	}
	return Resolved(loop, value)
}

func forward[U any](src, dst *Future[U]) {
	if src == nil {
		_ = dst.Reject(errNilFuture)
		return
	}
	src.AddCallbacks(
		func(value U) { _ = dst.Resolve(value) },
		func(err error) { _ = dst.Reject(err) },
	)
}
