package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vmail/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Socket = filepath.Join(base, "vmaild.sock")
	cfgVal.Database.Path = filepath.Join(cfgVal.Paths.DataDir, "vmail.db")
	cfgVal.Logging.File = "-"
	cfgVal.Vacation.Hostname = "mx.example.com"
	cfgVal.SMTP.Address = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSMTPAddress points vacation delivery at addr.
func WithSMTPAddress(addr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SMTP.Address = addr
	}
}

// WithVacationInterval overrides how often a sender may be notified.
func WithVacationInterval(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vacation.IntervalDays = days
	}
}

// WithSocket overrides the daemon socket path.
func WithSocket(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Socket = path
	}
}

// Touch creates an empty regular file at path.
func Touch(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
}
