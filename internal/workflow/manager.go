package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
	"vidlingo/internal/notifications"
	"vidlingo/internal/pipeline"
	"vidlingo/internal/queue"
)

// Runner executes one pipeline run. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, observer pipeline.Observer) (pipeline.Result, error)
}

// ArtifactUploader copies finished artifacts to remote storage.
type ArtifactUploader interface {
	UploadArtifacts(ctx context.Context, jobID string, files ...string) ([]string, error)
}

const (
	defaultWorkers = 2
	maxWorkers     = 16
)

// Manager coordinates the worker pool.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	runner       Runner
	logger       *slog.Logger
	notifier     notifications.Service
	uploader     ArtifactUploader
	hub          *Hub
	jobLogs      *JobLogger
	heartbeat    *HeartbeatMonitor
	workers      int
	pollInterval time.Duration

	wake chan struct{}

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	active   map[int]*queue.Job
	lastErr  error
	lastJob  *queue.Job
	finished int
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

// WithNotifier sets the notification service. The default is built from cfg.
func WithNotifier(svc notifications.Service) Option {
	return func(m *Manager) { m.notifier = svc }
}

// WithUploader enables artifact upload after successful jobs.
func WithUploader(up ArtifactUploader) Option {
	return func(m *Manager) { m.uploader = up }
}

// WithHub shares a job event hub with other components.
func WithHub(hub *Hub) Option {
	return func(m *Manager) { m.hub = hub }
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, runner Runner, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	m := &Manager{
		cfg:          cfg,
		store:        store,
		runner:       runner,
		logger:       logger,
		workers:      boundedWorkers(cfg.Workflow.Workers),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		wake:         make(chan struct{}, 1),
		active:       make(map[int]*queue.Job),
		jobLogs:      NewJobLogger(cfg),
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notifications.NewService(cfg, logger)
	}
	if m.hub == nil {
		m.hub = NewHub()
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	return m
}

func boundedWorkers(n int) int {
	switch {
	case n <= 0:
		return defaultWorkers
	case n > maxWorkers:
		return maxWorkers
	default:
		return n
	}
}

// Hub returns the job event hub.
func (m *Manager) Hub() *Hub {
	return m.hub
}

// Workers returns the configured pool size.
func (m *Manager) Workers() int {
	return m.workers
}

// Wake nudges an idle worker to check the queue immediately.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
