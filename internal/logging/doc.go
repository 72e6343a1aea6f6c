// Package logging assembles the slog loggers used by vmaild, vmailctl, and
// the MTA hook scripts.
//
// It owns the line formats (short, full, json, and caller-supplied templates),
// level parsing including the CRITICAL level, the watched log file writer that
// survives logrotate, and the process-wide Configure guard that keeps a
// script from attaching its output twice. Attribute helpers and a no-op
// logger round out the package for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every binary emits
// the same shape of output.
package logging
