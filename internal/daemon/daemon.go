package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"vidlingo/internal/config"
	"vidlingo/internal/deps"
	"vidlingo/internal/logging"
	"vidlingo/internal/preflight"
	"vidlingo/internal/queue"
	"vidlingo/internal/workflow"
)

// ErrQueueFull is returned when the number of unfinished jobs has reached
// workflow.queue_capacity.
var ErrQueueFull = queue.ErrQueueFull

// Daemon coordinates the background processing services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
	Dependencies []deps.Status
	Database     queue.DatabaseHealth
	Summary      queue.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, then launches the workflow manager and the
// API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vidlingo daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.workflow.Stop()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("vidlingo daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("api", d.Addr()),
		logging.Int("workers", d.workflow.Workers()),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("vidlingo daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the address the API server listens on, or "" when it is not
// serving.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Admit reports ErrQueueFull when no further job may be accepted. It lets
// uploads fail before the body is stored; Submit enforces the limit.
func (d *Daemon) Admit(ctx context.Context) error {
	limit := d.cfg.Workflow.QueueCapacity
	if limit <= 0 {
		return nil
	}
	active, err := d.store.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("count active jobs: %w", err)
	}
	if active >= limit {
		return ErrQueueFull
	}
	return nil
}

// Submit records an uploaded file as a pending job and wakes the workers. It
// returns ErrQueueFull when workflow.queue_capacity unfinished jobs exist.
func (d *Daemon) Submit(ctx context.Context, jobID, sourcePath, originalName, targetLanguage string) (*queue.Job, error) {
	if strings.TrimSpace(targetLanguage) == "" {
		targetLanguage = d.cfg.Translation.TargetLanguage
	}
	job, err := d.store.NewJobWithinCapacity(ctx, d.cfg.Workflow.QueueCapacity, jobID, sourcePath, originalName, targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("enqueue upload: %w", err)
	}
	d.workflow.Enqueued(ctx, job)
	return job, nil
}

// Hub returns the job event hub fed by the workflow manager.
func (d *Daemon) Hub() *workflow.Hub {
	return d.workflow.Hub()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		QueueDBPath:  d.cfg.QueueDBPath(),
		LockFilePath: d.lockPath,
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
	health, err := d.store.Health(ctx)
	if err != nil {
		health.Error = err.Error()
	}
	status.Database = health
	if summary, err := d.store.Summary(ctx); err == nil {
		status.Summary = summary
	} else {
		d.logger.Warn("failed to summarize queue", logging.Error(err))
	}
	return status
}

// RemoveJob deletes a job that is not processing together with its files.
// It reports false when the job does not exist and queue.ErrJobActive when a
// worker owns it.
func (d *Daemon) RemoveJob(ctx context.Context, jobID string) (bool, error) {
	job, err := d.store.GetByJobID(ctx, jobID)
	if err != nil || job == nil {
		return false, err
	}
	removed, err := d.store.Remove(ctx, jobID)
	if err != nil || !removed {
		return removed, err
	}
	d.workflow.RemoveJobFiles(job)
	d.logger.Info("job removed",
		logging.String(logging.FieldEventType, "job_removed"),
		logging.String(logging.FieldJobID, jobID),
	)
	return true, nil
}

// RetryJob moves a failed job back to pending and wakes the workers.
func (d *Daemon) RetryJob(ctx context.Context, jobID string) (int64, error) {
	updated, err := d.store.RetryFailed(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		d.workflow.Wake()
	}
	return updated, nil
}
