package daemonctl_test

import (
	"context"
	"testing"
	"time"

	"vmail/internal/daemonctl"
	"vmail/internal/testsupport"
)

func TestProcessInfoWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	running, pid, err := daemonctl.ProcessInfo(cfg.Paths.Socket)
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if running || pid != 0 {
		t.Fatalf("expected no daemon, got running=%v pid=%d", running, pid)
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonctl.Stop(cfg, time.Second); err != daemonctl.ErrDaemonNotRunning {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestStatusSnapshotFromDaemon(t *testing.T) {
	backend := &testsupport.FakeBackend{Passwords: map[string]string{"a@example.com": "x", "b@example.com": "y"}}
	socket := testsupport.StartIPCServer(t, backend)
	cfg := testsupport.NewConfig(t, testsupport.WithSocket(socket))

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if !status.Running || status.Users != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}

	running, _, err := daemonctl.ProcessInfo(socket)
	if err != nil || !running {
		t.Fatalf("ProcessInfo = %v, %v", running, err)
	}
}

func TestStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewUser(t, store, "alice@example.com", "secret")

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running {
		t.Fatal("expected offline status")
	}
	if status.Domains != 1 || status.Users != 1 {
		t.Fatalf("unexpected offline counts: %+v", status)
	}

	lines := daemonctl.BuildStatusLines(cfg, status)
	if len(lines) == 0 || lines[0].Severity != "warn" {
		t.Fatalf("expected not-running first line, got %+v", lines)
	}
}
