package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

// Panic records a value recovered from a panic.
func Panic(recovered any) Attr { return slog.Any(FieldPanic, recovered) }

func toArgs(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

const (
	// FieldLogger carries the dotted logger name rendered by the full format.
	FieldLogger = "logger"
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldError and FieldPanic carry the cause of a failure; the short
	// format appends them to the message.
	FieldError = "error"
	FieldPanic = "panic"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
)

func NewNop() *slog.Logger {
	return slog.New(noopHandler{})
}

// Named returns logger tagged with a dotted logger name such as
// "vmail.scripts.vchkpasswd". If logger is nil, a no-op logger is used.
func Named(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldLogger, name))
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// Critical logs at LevelCritical.
func Critical(logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), LevelCritical, msg, toArgs(attrs...)...)
}

// noopHandler discards all log output.
type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (noopHandler) WithAttrs([]slog.Attr) slog.Handler { return noopHandler{} }

func (noopHandler) WithGroup(string) slog.Handler { return noopHandler{} }
