package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vmail/internal/config"
	"vmail/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(t.TempDir(), "vmail.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nsocket = %q\ndata_dir = %q\nlog_dir = %q\n\n[database]\npath = %q\n\n[logging]\nfile = %q\n\n[smtp]\naddress = %q\n",
		cfg.Paths.Socket,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Database.Path,
		cfg.Logging.File,
		cfg.SMTP.Address,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("vmailctl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestDomainAndUserLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	requireContains(t, env.mustRun(t, "", "domain", "add", "Example.COM"), "Added domain example.com")
	requireContains(t, env.mustRun(t, "", "domain", "list"), "example.com")

	requireContains(t, env.mustRun(t, "s3cret\n", "user", "add", "Alice@Example.com", "--name", "Alice"), "Added user alice@example.com")
	out := env.mustRun(t, "", "user", "list", "example.com")
	requireContains(t, out, "alice@example.com")
	requireContains(t, out, "yes")

	requireContains(t, env.mustRun(t, "", "user", "passwd", "alice@example.com", "--password", "n3w"), "Password updated for alice@example.com")
	requireContains(t, env.mustRun(t, "", "user", "disable", "alice@example.com"), "User alice@example.com disabled")
	requireContains(t, env.mustRun(t, "", "user", "list"), "no")

	store := testsupport.MustOpenStore(t, env.cfg)
	user, err := store.GetUser(t.Context(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Enabled || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	requireContains(t, env.mustRun(t, "", "domain", "delete", "example.com"), "Deleted domain example.com")
	requireContains(t, env.mustRun(t, "", "user", "list"), "No users")
}

func TestUserAddRequiresDomain(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := env.run(t, "", "user", "add", "bob@missing.example", "--password", "x")
	if err == nil || !strings.Contains(err.Error(), "domain missing.example does not exist") {
		t.Fatalf("expected missing domain error, got %v", err)
	}
}

func TestUserAddRequiresPassword(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "", "domain", "add", "example.com")
	if _, err := env.run(t, "", "user", "add", "bob@example.com"); err == nil {
		t.Fatal("expected password error")
	}
}

func TestForwardCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "", "domain", "add", "example.com")

	out := env.mustRun(t, "", "forward", "add", "example.com", "sales@example.com", "bob@example.org")
	requireContains(t, out, "sales@example.com -> bob@example.org")

	out = env.mustRun(t, "", "forward", "list", "example.com")
	requireContains(t, out, "sales@example.com")
	requireContains(t, out, "bob@example.org")

	requireContains(t, env.mustRun(t, "", "forward", "delete", "1"), "Deleted forward 1")
	requireContains(t, env.mustRun(t, "", "forward", "list"), "No forwards")

	if _, err := env.run(t, "", "forward", "delete", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestVacationCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "", "domain", "add", "example.com")
	env.mustRun(t, "secret\n", "user", "add", "alice@example.com")

	out := env.mustRun(t, "", "vacation", "set", "alice@example.com", "--subject", "Away", "--body", "Back on Monday.")
	requireContains(t, out, "Vacation for alice@example.com is active")

	out = env.mustRun(t, "", "vacation", "show", "alice@example.com")
	requireContains(t, out, "Subject: Away")
	requireContains(t, out, "Back on Monday.")

	store := testsupport.MustOpenStore(t, env.cfg)
	if err := store.RecordNotification(t.Context(), "alice@example.com", "bob@example.org"); err != nil {
		t.Fatalf("RecordNotification: %v", err)
	}
	requireContains(t, env.mustRun(t, "", "vacation", "show", "alice@example.com"), "bob@example.org")

	requireContains(t, env.mustRun(t, "", "vacation", "clear", "alice@example.com"), "Vacation cleared for alice@example.com")
	if _, err := env.run(t, "", "vacation", "show", "alice@example.com"); err == nil {
		t.Fatal("expected not found after clear")
	}
	if _, err := env.run(t, "", "vacation", "set", "alice@example.com"); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestStatusOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "", "domain", "add", "example.com")

	out := env.mustRun(t, "", "status")
	requireContains(t, out, "System Status")
	requireContains(t, out, "Not running")
	requireContains(t, out, "1 domains, 0 users")
}

func TestStatusWithDaemon(t *testing.T) {
	backend := &testsupport.FakeBackend{Passwords: map[string]string{"alice@example.com": "x"}}
	socket := testsupport.StartIPCServer(t, backend)
	env := setupCLITestEnv(t, testsupport.WithSocket(socket))

	out := env.mustRun(t, "", "status")
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "0 domains, 1 users")
}

func TestStopWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	requireContains(t, env.mustRun(t, "", "stop"), "vmaild is not running")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "etc", "vmail.toml")

	requireContains(t, env.mustRun(t, "", "config", "init", "--path", target), "Wrote sample configuration")
	if _, err := env.run(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}
	requireContains(t, env.mustRun(t, "", "config", "validate", target), "Configuration valid")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "", "logs"); err == nil {
		t.Fatal("expected error when logging to stdout")
	}

	logPath := filepath.Join(env.cfg.Paths.LogDir, "vmaild.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	env.cfg.Logging.File = logPath
	writeTestConfig(t, env.configPath, env.cfg)

	out := env.mustRun(t, "", "logs", "-n", "2")
	if strings.Contains(out, "one") || !strings.Contains(out, "two\nthree\n") {
		t.Fatalf("unexpected logs output:\n%s", out)
	}
}

func TestRenderStatusLine(t *testing.T) {
	got := renderStatusLine("vmaild", statusWarn, "Not running", false)
	if !strings.Contains(got, "vmaild:") || !strings.Contains(got, "[WARN] Not running") {
		t.Fatalf("unexpected line %q", got)
	}
	if kind := statusKindFromSeverity("OK"); kind != statusOK {
		t.Fatalf("statusKindFromSeverity(OK) = %v", kind)
	}
}
