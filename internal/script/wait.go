package script

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vmail/internal/logging"
	"vmail/internal/reactor"
)

// waiter owns the pending outcome of an async invocation and the single
// signal that stops the loop.
type waiter struct {
	log     *slog.Logger
	loop    *reactor.Loop
	pending int
	done    bool
}

func newWaiter(log *slog.Logger) *waiter {
	return &waiter{log: log, pending: ExitSuccess}
}

// complete records code and stops the loop. Only the first call counts.
// It always runs on the loop goroutine.
func (w *waiter) complete(code int) {
	if w.done {
		return
	}
	w.done = true
	w.pending = code
	if w.loop != nil && w.loop.Running() {
		_ = w.loop.Stop()
	}
}

func (w *waiter) panicked(recovered any) {
	w.log.Error("unhandled error", logging.Panic(recovered))
	w.complete(ExitFailure)
}

func (w *waiter) await(ctx context.Context, loop *reactor.Loop, future *reactor.Future[int], timeout time.Duration) int {
	w.loop = loop
	future.AddCallbacks(
		func(code int) {
			w.complete(code)
		},
		func(err error) {
			w.log.Error("unhandled error", logging.Error(err))
			w.complete(ExitFailure)
		},
	)

	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := loop.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			w.log.Error("timed out waiting for vmaild", logging.Duration("timeout", timeout))
		case errors.Is(err, context.Canceled):
			w.log.Error("interrupted while waiting for vmaild")
		default:
			w.log.Error("event loop failed", logging.Error(err))
		}
		return ExitFailure
	}
	return w.pending
}
