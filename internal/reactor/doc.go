// Package reactor provides the single-threaded cooperative event loop and the
// one-shot Future type that the command-line scripts use to talk to vmaild.
//
// A Loop runs every task on the goroutine that called Run. Blocking work such
// as dialing the daemon socket or waiting for an RPC reply is started with Go,
// which runs it on a helper goroutine and settles the returned Future from
// there; the Future then posts its callbacks back onto the loop. Callbacks
// attached to one Future fire in attachment order and never concurrently with
// any other loop task.
//
// The loop has exactly two states, Idle and Running. Starting a running loop
// fails with ErrAlreadyRunning and stopping an idle loop fails with
// ErrNotRunning. A Stop requested from inside a task takes effect once that
// task returns.
package reactor
