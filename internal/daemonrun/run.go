package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"vmail/internal/accounts"
	"vmail/internal/config"
	"vmail/internal/daemon"
	"vmail/internal/ipc"
	"vmail/internal/logging"
	"vmail/internal/metrics"
	"vmail/internal/preflight"
	"vmail/internal/vacation"
)

// Options configures daemon process runtime behavior. Empty fields fall back
// to the [logging] section of the config.
type Options struct {
	LogLevel  string
	LogFormat string
	LogFile   string
	// Ready is called once the IPC socket accepts connections.
	Ready func()
}

// Run starts the vmaild runtime and blocks until ctx ends or SIGINT/SIGTERM
// arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.Configure(loggerOptions(cfg, opts))
	if err != nil && logger == nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if check := preflight.CheckDirectoryAccess("Data directory", cfg.Paths.DataDir); !check.Passed {
		logging.Critical(logger, "data directory not usable", logging.String("detail", check.Detail))
		return fmt.Errorf("data directory check failed: %s", check.Detail)
	}
	logConfigSnapshot(logger, cfg)
	if cfg.SMTP.Address != "" {
		if check := preflight.CheckSMTPRelay(signalCtx, cfg.Vacation.Hostname, cfg.SMTP.Address); !check.Passed {
			logger.Warn("smtp relay check failed; vacation replies will fail until it is reachable",
				logging.String("detail", check.Detail))
		}
	}

	store, err := accounts.Open(cfg)
	if err != nil {
		logger.Error("open account store", logging.Error(err))
		return err
	}

	sender := &vacation.SMTPSender{
		Address:  cfg.SMTP.Address,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}
	d, err := daemon.New(cfg, store, sender, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// The lock must be held before the socket is replaced.
	if err := d.Start(signalCtx); err != nil {
		logging.Critical(logger, "daemon start failed", logging.Error(err))
		return err
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.Socket, d, os.FileMode(cfg.Daemon.SocketMode), logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if addr := strings.TrimSpace(cfg.Metrics.Listen); addr != "" {
		metricsServer, err := metrics.Listen(addr, logging.NewComponentLogger(logger, "metrics"))
		if err != nil {
			logger.Warn("metrics listener unavailable", logging.String("address", addr), logging.Error(err))
		} else {
			metricsServer.Serve(signalCtx)
			logger.Info("metrics listening", logging.String("address", metricsServer.Addr()))
		}
	}

	logger.Info("vmaild ready",
		logging.String("socket", cfg.Paths.Socket),
		logging.Int("pid", os.Getpid()),
	)
	if opts.Ready != nil {
		opts.Ready()
	}

	<-signalCtx.Done()
	logger.Info("vmaild shutting down")
	return nil
}

func loggerOptions(cfg *config.Config, opts Options) logging.Options {
	out := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Name:   "vmaild",
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		out.Level = v
	}
	if v := strings.TrimSpace(opts.LogFormat); v != "" {
		out.Format = v
	}
	if v := strings.TrimSpace(opts.LogFile); v != "" {
		out.File = v
	}
	return out
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String("socket", cfg.Paths.Socket),
		logging.String("database", cfg.Database.Path),
		logging.String("smtp_relay", cfg.SMTP.Address),
		logging.Bool("smtp_auth", strings.TrimSpace(cfg.SMTP.Username) != ""),
		logging.String("vacation_hostname", cfg.Vacation.Hostname),
		logging.Duration("vacation_interval", cfg.VacationInterval()),
		logging.Bool("metrics_enabled", strings.TrimSpace(cfg.Metrics.Listen) != ""),
		logging.Duration("client_timeout", time.Duration(cfg.Client.TimeoutSeconds)*time.Second),
	)
}
