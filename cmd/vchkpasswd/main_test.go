package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vmail/internal/testsupport"
)

func execute(t *testing.T, backend *testsupport.FakeBackend, args ...string) (int, string) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "missing.sock")
	if backend != nil {
		socket = testsupport.StartIPCServer(t, backend)
	}
	logs := &testsupport.LogBuffer{}
	s := newScript()
	s.Stdout = logs
	s.Stderr = logs
	s.ConfigureLogging = logs.Configure

	full := append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--socket", socket}, args...)
	code := s.Execute(context.Background(), full)
	return code, logs.String()
}

func TestVchkpasswd(t *testing.T) {
	passwords := map[string]string{"alice@example.com": "secret"}

	tests := []struct {
		name    string
		backend *testsupport.FakeBackend
		args    []string
		want    int
		message string
	}{
		{"accepted", &testsupport.FakeBackend{Passwords: passwords}, []string{"alice@example.com", "secret"}, 0, "alice@example.com successfully authenticated"},
		{"rejected", &testsupport.FakeBackend{Passwords: passwords}, []string{"alice@example.com", "wrong"}, 1, "alice@example.com failed to authenticate"},
		{"daemon error", &testsupport.FakeBackend{Err: errors.New("database locked")}, []string{"alice@example.com", "secret"}, 1, "unable to check authentication, vmaild encountered an error: database locked"},
		{"not running", nil, []string{"alice@example.com", "secret"}, 255, "vmaild not running"},
		{"no arguments", &testsupport.FakeBackend{}, nil, 1, "no arguments specified"},
		{"one argument", &testsupport.FakeBackend{}, []string{"alice@example.com"}, 1, "incorrect number of arguments specified"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, logs := execute(t, tc.backend, tc.args...)
			if code != tc.want {
				t.Fatalf("exit code = %d, want %d; logs:\n%s", code, tc.want, logs)
			}
			if !strings.Contains(logs, tc.message) {
				t.Fatalf("expected %q in logs:\n%s", tc.message, logs)
			}
		})
	}
}

func TestVchkpasswdSkipsDaemonOnArgumentError(t *testing.T) {
	backend := &testsupport.FakeBackend{}
	if code, _ := execute(t, backend, "alice@example.com"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if calls := backend.CallLog(); len(calls) != 0 {
		t.Fatalf("expected no daemon calls, got %v", calls)
	}
}
