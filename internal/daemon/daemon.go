package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vmail/internal/accounts"
	"vmail/internal/config"
	"vmail/internal/ipc"
	"vmail/internal/logging"
	"vmail/internal/vacation"
)

// Daemon answers vmail RPC calls and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *accounts.Store
	sender vacation.Sender
	now    func() time.Time

	sessionID string
	lockPath  string
	lock      *flock.Flock
	startedAt time.Time

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithClock replaces the clock used for vacation rate limiting.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) {
		if now != nil {
			d.now = now
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *accounts.Store, sender vacation.Sender, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || sender == nil {
		return nil, errors.New("daemon requires config, store, and sender")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		sender:    sender,
		now:       time.Now,
		sessionID: uuid.NewString(),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vmaild instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startedAt = d.now().UTC()
	d.running.Store(true)
	d.logger.Info("vmaild started",
		logging.String("lock", d.lockPath),
		logging.String("session_id", d.sessionID),
	)
	return nil
}

// Stop releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("vmaild stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start succeeded and Stop was not called yet.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusResponse, error) {
	counts, err := d.store.Counts(ctx)
	if err != nil {
		return ipc.StatusResponse{}, err
	}
	return ipc.StatusResponse{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		SessionID:    d.sessionID,
		SocketPath:   d.cfg.Paths.Socket,
		DatabasePath: d.store.Path(),
		LockPath:     d.lockPath,
		Domains:      counts.Domains,
		Users:        counts.Users,
		Vacations:    counts.Vacations,
		StartedAt:    d.startedAt.Format(time.RFC3339),
	}, nil
}
