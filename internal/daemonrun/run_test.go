package daemonrun_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"vmail/internal/daemonctl"
	"vmail/internal/daemonrun"
	"vmail/internal/logging"
	"vmail/internal/testsupport"
)

func TestRunServesUntilCancelled(t *testing.T) {
	logging.Reset()
	t.Cleanup(logging.Reset)

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewUser(t, store, "alice@example.com", "secret")
	store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{
			LogLevel: "error",
			Ready:    func() { close(ready) },
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		if err != nil && strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon runtime test: %v", err)
		}
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}

	client, err := daemonctl.WaitForClient(cfg.Paths.Socket, 2*time.Second)
	if err != nil {
		t.Fatalf("WaitForClient: %v", err)
	}
	ok, err := client.Authenticate("alice@example.com", "secret")
	if err != nil || !ok {
		t.Fatalf("Authenticate = %v, %v", ok, err)
	}
	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PID != os.Getpid() || status.Users != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	client.Close()

	pid, err := daemonctl.ReadPID(cfg.PIDPath())
	if err != nil || pid != os.Getpid() {
		t.Fatalf("ReadPID = %d, %v", pid, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, stat err=%v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
