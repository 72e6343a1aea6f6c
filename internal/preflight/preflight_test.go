package preflight

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/emersion/go-smtp"

	"vmail/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type refuseBackend struct{}

func (refuseBackend) NewSession(*smtp.Conn) (smtp.Session, error) { return refuseSession{}, nil }

type refuseSession struct{}

func (refuseSession) Mail(string, *smtp.MailOptions) error { return errors.New("not accepting") }
func (refuseSession) Rcpt(string, *smtp.RcptOptions) error { return errors.New("not accepting") }
func (refuseSession) Data(io.Reader) error                 { return errors.New("not accepting") }
func (refuseSession) Reset()                               {}
func (refuseSession) Logout() error                        { return nil }

func startRelay(t *testing.T) string {
	t.Helper()
	server := smtp.NewServer(refuseBackend{})
	server.Domain = "relay.test"
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() { _ = server.Close() })
	return listener.Addr().String()
}

func closedAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()
	return addr
}

func TestCheckSMTPRelay(t *testing.T) {
	ctx := context.Background()

	if result := CheckSMTPRelay(ctx, "mx.example.com", startRelay(t)); !result.Passed {
		t.Fatalf("expected reachable relay, got: %s", result.Detail)
	}
	if result := CheckSMTPRelay(ctx, "mx.example.com", closedAddress(t)); result.Passed {
		t.Fatal("expected failure for closed port")
	}
	if result := CheckSMTPRelay(ctx, "", ""); result.Passed || result.Detail != "not configured" {
		t.Fatalf("unexpected result for empty address: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSMTPAddress(startRelay(t)))

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("check %s failed: %s", r.Name, r.Detail)
		}
	}

	cfg.SMTP.Address = ""
	if got := len(RunAll(context.Background(), cfg)); got != 2 {
		t.Fatalf("expected relay check skipped, got %d results", got)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
