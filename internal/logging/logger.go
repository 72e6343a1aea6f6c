package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// LevelCritical sits above slog.LevelError for failures that stop the daemon.
const LevelCritical = slog.Level(12)

const (
	FormatShort = "short"
	FormatFull  = "full"
	FormatJSON  = "json"
)

const fullTimeLayout = "Mon, 02 Jan 2006 15:04:05"

// Options describes logger construction parameters.
type Options struct {
	// Level is one of debug, info, warn, error, critical; anything else is info.
	Level string
	// Format is short, full, json, or a template using {level}, {time},
	// {name}, and {message}.
	Format string
	// File is the destination path; empty or "-" selects stdout.
	File string
	// Name is the default logger name for the full format.
	Name string
	// Writer overrides File when set.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(opts.Level))

	writer := opts.Writer
	colour := false
	if writer == nil {
		w, tty, err := openOutput(opts.File)
		if err != nil {
			return nil, err
		}
		writer = w
		colour = tty
	}

	var handler slog.Handler
	switch format := strings.TrimSpace(opts.Format); strings.ToLower(format) {
	case FormatJSON:
		handler = newJSONHandler(writer, levelVar, levelVar.Level() <= slog.LevelDebug)
	case FormatShort, "":
		handler = newLineHandler(writer, levelVar, renderShort)
	case FormatFull:
		handler = newLineHandler(writer, levelVar, renderFull(colour))
	default:
		handler = newLineHandler(writer, levelVar, renderTemplate(format))
	}

	logger := slog.New(handler)
	if name := strings.TrimSpace(opts.Name); name != "" {
		logger = Named(logger, name)
	}
	return logger, nil
}

// ParseLevel maps a case-insensitive level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func openOutput(path string) (io.Writer, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), nil
	}
	w, err := OpenWatchedFile(path)
	if err != nil {
		return nil, false, err
	}
	return w, false, nil
}

var (
	configureMu   sync.Mutex
	configureOnce = new(sync.Once)
	configured    *slog.Logger
	configuredOpt Options
	configureErr  error
)

// ErrAlreadyConfigured is returned by Configure when a second call asks for
// different options than the first one.
var ErrAlreadyConfigured = errors.New("logging already configured")

// Configure builds the process-wide logger exactly once and installs it as
// the slog default. Later calls return the same logger without attaching a
// second output.
func Configure(opts Options) (*slog.Logger, error) {
	configureMu.Lock()
	defer configureMu.Unlock()

	first := false
	configureOnce.Do(func() {
		first = true
		configuredOpt = opts
		configured, configureErr = New(opts)
		if configureErr == nil {
			slog.SetDefault(configured)
		}
	})
	if configureErr != nil {
		return nil, configureErr
	}
	if !first && !sameOptions(configuredOpt, opts) {
		return configured, ErrAlreadyConfigured
	}
	return configured, nil
}

// Reset clears the Configure guard. Intended for tests.
func Reset() {
	configureMu.Lock()
	defer configureMu.Unlock()
	configureOnce = new(sync.Once)
	configured = nil
	configuredOpt = Options{}
	configureErr = nil
}

func sameOptions(a, b Options) bool {
	return ParseLevel(a.Level) == ParseLevel(b.Level) &&
		a.Format == b.Format &&
		a.File == b.File &&
		a.Name == b.Name
}

type renderFunc func(buf *bytes.Buffer, r lineRecord)

type lineRecord struct {
	level   slog.Level
	time    time.Time
	name    string
	message string
	attrs   []kv
}

type lineHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	render renderFunc
	attrs  []slog.Attr
	groups []string
}

func newLineHandler(w io.Writer, lvl *slog.LevelVar, render renderFunc) slog.Handler {
	return &lineHandler{mu: new(sync.Mutex), writer: w, level: lvl, render: render}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	line := lineRecord{level: record.Level, time: record.Time, message: record.Message}
	if line.time.IsZero() {
		line.time = time.Now()
	}
	filtered := kvs[:0]
	for _, kv := range kvs {
		if kv.key == FieldLogger {
			// The innermost name wins so Named can be stacked.
			line.name = attrString(kv.value)
			continue
		}
		filtered = append(filtered, kv)
	}
	line.attrs = filtered

	var buf bytes.Buffer
	buf.Grow(96 + len(line.attrs)*24)
	h.render(&buf, line)
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *lineHandler) clone() *lineHandler {
	clone := &lineHandler{mu: h.mu, writer: h.writer, level: h.level, render: h.render}
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	clone.groups = append([]string(nil), h.groups...)
	return clone
}

// renderShort writes the message alone, followed by the error or panic value
// when the record carries one.
func renderShort(buf *bytes.Buffer, r lineRecord) {
	buf.WriteString(r.message)
	for _, kv := range r.attrs {
		if kv.key != FieldError && kv.key != FieldPanic {
			continue
		}
		buf.WriteString(": ")
		buf.WriteString(kv.value.Resolve().String())
	}
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderFull(colour bool) renderFunc {
	return func(buf *bytes.Buffer, r lineRecord) {
		label := fmt.Sprintf("%-8s", levelName(r.level))
		if colour {
			label = colourize(r.level, label)
		}
		fmt.Fprintf(buf, "[%s] %s %-30s %s", label, r.time.Format(fullTimeLayout), r.name, r.message)
		writeAttrs(buf, r.attrs)
	}
}

func colourize(level slog.Level, label string) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + label + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + label + ansiReset
	case level < slog.LevelInfo:
		return ansiBlue + label + ansiReset
	default:
		return label
	}
}

func renderTemplate(format string) renderFunc {
	return func(buf *bytes.Buffer, r lineRecord) {
		replacer := strings.NewReplacer(
			"{level}", levelName(r.level),
			"{time}", r.time.Format(fullTimeLayout),
			"{name}", r.name,
			"{message}", r.message,
		)
		buf.WriteString(replacer.Replace(format))
	}
}

func writeAttrs(buf *bytes.Buffer, kvs []kv) {
	for _, kv := range kvs {
		if kv.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 && key != FieldLogger {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return formatValue(v)
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
