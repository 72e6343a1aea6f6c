// Package script is the harness behind the vmail hook commands.
//
// A Script describes one single-shot command: its usage line, extra flags,
// and a body. Execute parses the universal -L/--loglevel and -l/--log-file
// flags, configures logging once, runs the body, and turns the body's Outcome
// into a process exit code.
//
// Bodies that only need to inspect their arguments return Immediate or None
// and never touch the event loop. Daemon-backed bodies mark the script Async
// and return Deferred with a future produced by Connector.Connect; the harness
// then starts the invocation's reactor.Loop, waits for that future to settle,
// stops the loop exactly once, and exits with the settled value. Any error or
// panic that reaches the harness is logged and collapsed to exit code 1.
package script
