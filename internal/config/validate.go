package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateVacation(); err != nil {
		return err
	}
	if err := c.validateSMTP(); err != nil {
		return err
	}
	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("metrics.listen: %w", err)
		}
	}
	if c.Client.TimeoutSeconds < 0 {
		return errors.New("client.timeout_seconds must be >= 0")
	}
	if c.Daemon.SocketMode > 0o777 {
		return fmt.Errorf("daemon.socket_mode %o is not a permission mask", c.Daemon.SocketMode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "critical":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateVacation() error {
	if c.Vacation.IntervalDays < 0 {
		return errors.New("vacation.interval_days must be >= 0")
	}
	return nil
}

func (c *Config) validateSMTP() error {
	if c.SMTP.Address == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.SMTP.Address); err != nil {
		return fmt.Errorf("smtp.address: %w", err)
	}
	if strings.TrimSpace(c.SMTP.Password) != "" && strings.TrimSpace(c.SMTP.Username) == "" {
		return errors.New("smtp.username is required when smtp.password is set")
	}
	return nil
}
