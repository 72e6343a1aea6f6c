package reactor_test

import (
	"errors"
	"strconv"
	"testing"

	"vmail/internal/reactor"
)

func TestFutureSingleAssignment(t *testing.T) {
	loop := reactor.New()
	f := reactor.NewFuture[int](loop)
	if err := f.Resolve(1); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := f.Resolve(2); !errors.Is(err, reactor.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if err := f.Reject(errors.New("late")); !errors.Is(err, reactor.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled on reject, got %v", err)
	}
	if !f.Settled() {
		t.Fatal("expected settled future")
	}
}

func TestFutureCallbacksFireInAttachmentOrder(t *testing.T) {
	loop := reactor.New()
	f := reactor.NewFuture[string](loop)
	var seen []string
	var runningInSecond bool
	f.AddCallbacks(func(v string) {
		seen = append(seen, "first:"+v)
		if loop.Running() {
			_ = loop.Stop()
		}
	}, nil)
	f.AddCallbacks(func(v string) {
		seen = append(seen, "second:"+v)
		runningInSecond = loop.Running()
		if loop.Running() {
			if err := loop.Stop(); err != nil {
				t.Errorf("second stop: %v", err)
			}
		}
	}, nil)
	go func() { _ = f.Resolve("x") }()

	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 || seen[0] != "first:x" || seen[1] != "second:x" {
		t.Fatalf("unexpected callback order: %v", seen)
	}
	if !runningInSecond {
		t.Fatal("second callback observed a stopped loop")
	}
}

func TestFutureCallbackAttachedAfterSettle(t *testing.T) {
	loop := reactor.New()
	f := reactor.Failed[int](loop, errors.New("nope"))
	var got error
	f.AddCallbacks(func(int) { t.Error("unexpected success arm") }, func(err error) {
		got = err
		_ = loop.Stop()
	})
	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got == nil || got.Error() != "nope" {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestGoSettlesFromHelperGoroutine(t *testing.T) {
	loop := reactor.New()
	f := reactor.Go(loop, func() (int, error) { return 42, nil })
	out := reactor.Then(f, func(v int) (string, error) { return strconv.Itoa(v), nil })
	var got string
	out.AddCallbacks(func(v string) {
		got = v
		_ = loop.Stop()
	}, func(err error) {
		t.Errorf("unexpected error: %v", err)
		_ = loop.Stop()
	})
	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
}

func TestChainBindsNestedFuture(t *testing.T) {
	loop := reactor.New()
	conn := reactor.Go(loop, func() (string, error) { return "conn", nil })
	result := reactor.Chain(conn,
		func(c string) *reactor.Future[int] {
			return reactor.Go(loop, func() (int, error) { return len(c), nil })
		},
		func(error) *reactor.Future[int] { return reactor.Resolved(loop, 255) },
	)
	var got int
	result.AddCallbacks(func(v int) { got = v; _ = loop.Stop() }, nil)
	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestHandleRecoversError(t *testing.T) {
	loop := reactor.New()
	failed := reactor.Go(loop, func() (bool, error) { return false, errors.New("rpc failed") })
	code := reactor.Handle(failed,
		func(ok bool) (int, error) { return 0, nil },
		func(error) (int, error) { return 1, nil },
	)
	var got = -1
	code.AddCallbacks(func(v int) { got = v; _ = loop.Stop() }, nil)
	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected recovered outcome 1, got %d", got)
	}
}

func TestBindPropagatesError(t *testing.T) {
	loop := reactor.New()
	sentinel := errors.New("dial failed")
	out := reactor.Bind(reactor.Failed[int](loop, sentinel), func(int) *reactor.Future[int] {
		t.Error("continuation should not run")
		return nil
	})
	var got error
	out.AddCallbacks(nil, func(err error) { got = err; _ = loop.Stop() })
	if err := runWithTimeout(t, loop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(got, sentinel) {
		t.Fatalf("expected sentinel, got %v", got)
	}
}
