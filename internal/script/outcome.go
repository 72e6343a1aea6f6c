package script

import (
	"vmail/internal/reactor"
)

// Exit codes shared by every script.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 255
)

type outcomeKind int

const (
	kindNone outcomeKind = iota
	kindImmediate
	kindDeferred
)

// Outcome is what a script body hands back to the harness: nothing, an exit
// code available now, or a future exit code.
type Outcome struct {
	kind   outcomeKind
	code   int
	future *reactor.Future[int]
}

// None reports success without an explicit code.
func None() Outcome {
	return Outcome{kind: kindNone}
}

// Immediate exits with code without starting the event loop.
func Immediate(code int) Outcome {
	return Outcome{kind: kindImmediate, code: code}
}

// Deferred exits with the value future settles with.
func Deferred(future *reactor.Future[int]) Outcome {
	if future == nil {
		return None()
	}
	return Outcome{kind: kindDeferred, future: future}
}

// IsDeferred reports whether the outcome carries a future.
func (o Outcome) IsDeferred() bool {
	return o.kind == kindDeferred
}

// Code returns the immediate exit code; None yields ExitSuccess. It is
// meaningless for deferred outcomes.
func (o Outcome) Code() int {
	if o.kind == kindImmediate {
		return o.code
	}
	return ExitSuccess
}

// Future returns the deferred exit code, or nil.
func (o Outcome) Future() *reactor.Future[int] {
	return o.future
}
