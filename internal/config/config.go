package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath names the environment variable that overrides config discovery.
const EnvConfigPath = "VMAIL_CONFIG"

// Paths contains filesystem locations shared by daemon and clients.
type Paths struct {
	Socket  string `toml:"socket"`
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Database contains account store settings.
type Database struct {
	// Path defaults to <data_dir>/vmail.db when empty.
	Path string `toml:"path"`
}

// Logging contains configuration for daemon log output. Scripts take their
// level and destination from -L/-l instead.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Vacation contains autoreply behaviour.
type Vacation struct {
	Hostname       string `toml:"hostname"`
	IntervalDays   int    `toml:"interval_days"`
	DefaultSubject string `toml:"default_subject"`
}

// SMTP contains the relay used to deliver vacation replies.
type SMTP struct {
	Address  string `toml:"address"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Metrics contains the optional Prometheus listener.
type Metrics struct {
	Listen string `toml:"listen"`
}

// Client contains settings for the hook scripts.
type Client struct {
	// TimeoutSeconds bounds how long a script waits for vmaild; 0 waits forever.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Daemon contains vmaild process settings.
type Daemon struct {
	SocketMode uint32 `toml:"socket_mode"`
}

// Config encapsulates all configuration values for vmail.
//
// Configuration sections by subsystem:
//   - Paths: socket, data and log directories
//   - Database: account store location
//   - Logging: daemon log level, format, and file
//   - Vacation: autoreply hostname, rate limit, default subject
//   - SMTP: relay for outgoing autoreplies
//   - Metrics: optional Prometheus listener
//   - Client: script wait timeout
//   - Daemon: socket permissions
type Config struct {
	Paths    Paths    `toml:"paths"`
	Database Database `toml:"database"`
	Logging  Logging  `toml:"logging"`
	Vacation Vacation `toml:"vacation"`
	SMTP     SMTP     `toml:"smtp"`
	Metrics  Metrics  `toml:"metrics"`
	Client   Client   `toml:"client"`
	Daemon   Daemon   `toml:"daemon"`
}

// DefaultConfigPath returns the system-wide configuration file location.
func DefaultConfigPath() string {
	return "/etc/vmail/vmail.toml"
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	systemPath := DefaultConfigPath()
	userPath, err := expandPath("~/.config/vmail/config.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(systemPath); err == nil && !info.IsDir() {
		return systemPath, true, nil
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}

	return systemPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, filepath.Dir(c.Paths.Socket), filepath.Dir(c.Database.Path)}
	if c.Logging.File != "" && c.Logging.File != "-" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "vmaild.lock")
}

// PIDPath returns the daemon pid file.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "vmaild.pid")
}

// VacationInterval returns how long a sender is remembered after being sent
// an autoreply.
func (c *Config) VacationInterval() time.Duration {
	return time.Duration(c.Vacation.IntervalDays) * 24 * time.Hour
}

// ClientTimeout returns the script wait bound; zero means no bound.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
