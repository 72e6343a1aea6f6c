package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeVacation()
	c.SMTP.Address = strings.TrimSpace(c.SMTP.Address)
	c.Metrics.Listen = strings.TrimSpace(c.Metrics.Listen)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Socket) == "" {
		c.Paths.Socket = defaultSocketPath
	}
	if c.Paths.Socket, err = expandPath(c.Paths.Socket); err != nil {
		return fmt.Errorf("paths.socket: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
	}
	if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" && file != "-" {
		if c.Logging.File, err = expandPath(file); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	format := strings.TrimSpace(c.Logging.Format)
	switch strings.ToLower(format) {
	case "":
		c.Logging.Format = defaultLogFormat
	case "short", "full", "json":
		c.Logging.Format = strings.ToLower(format)
	default:
		// Custom templates are kept verbatim.
		c.Logging.Format = format
	}
}

func (c *Config) normalizeVacation() {
	c.Vacation.Hostname = strings.TrimSpace(c.Vacation.Hostname)
	if c.Vacation.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			c.Vacation.Hostname = host
		} else {
			c.Vacation.Hostname = "localhost"
		}
	}
	if strings.TrimSpace(c.Vacation.DefaultSubject) == "" {
		c.Vacation.DefaultSubject = defaultVacationSubject
	}
}
