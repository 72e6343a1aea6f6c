package testsupport

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vmail/internal/ipc"
	"vmail/internal/logging"
)

// FakeBackend answers daemon calls from in-memory tables.
type FakeBackend struct {
	mu        sync.Mutex
	Passwords map[string]string
	Vacations map[string]bool
	Err       error
	Calls     []string
}

// Authenticate implements ipc.Backend.
func (f *FakeBackend) Authenticate(_ context.Context, username, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "authenticate "+username)
	if f.Err != nil {
		return false, f.Err
	}
	want, ok := f.Passwords[username]
	return ok && want == password, nil
}

// SendVacation implements ipc.Backend.
func (f *FakeBackend) SendVacation(_ context.Context, recipient, sender string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "vacation "+recipient+" "+sender)
	if f.Err != nil {
		return false, f.Err
	}
	return f.Vacations[recipient], nil
}

// Status implements ipc.Backend.
func (f *FakeBackend) Status(context.Context) (ipc.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ipc.StatusResponse{Running: true, Users: len(f.Passwords)}, nil
}

// CallLog returns a copy of the recorded calls.
func (f *FakeBackend) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// StartIPCServer serves backend on a socket inside a temp dir and returns the
// socket path.
func StartIPCServer(t testing.TB, backend ipc.Backend) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(t.TempDir(), "vmaild.sock")
	srv, err := ipc.NewServer(ctx, socket, backend, 0o600, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return socket
}

// LogBuffer collects script log output.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Configure returns a logging constructor writing to the buffer instead of
// configuring the process-wide logger.
func (b *LogBuffer) Configure(opts logging.Options) (*slog.Logger, error) {
	opts.File = ""
	opts.Writer = b
	return logging.New(opts)
}
