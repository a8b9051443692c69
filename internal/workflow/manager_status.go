package workflow

import (
	"context"
	"sort"

	"vidlingo/internal/logging"
	"vidlingo/internal/queue"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running    bool                 `json:"running"`
	Workers    int                  `json:"workers"`
	ActiveJobs []queue.Job          `json:"active_jobs"`
	Finished   int                  `json:"finished"`
	LastError  string               `json:"last_error,omitempty"`
	LastJob    *queue.Job           `json:"last_job,omitempty"`
	QueueStats map[queue.Status]int `json:"queue_stats"`
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:  m.running,
		Workers:  m.workers,
		Finished: m.finished,
	}
	workers := make([]int, 0, len(m.active))
	for worker := range m.active {
		workers = append(workers, worker)
	}
	sort.Ints(workers)
	summary.ActiveJobs = make([]queue.Job, 0, len(workers))
	for _, worker := range workers {
		summary.ActiveJobs = append(summary.ActiveJobs, *m.active[worker])
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastJob != nil {
		snapshot := *m.lastJob
		summary.LastJob = &snapshot
	}
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}
	summary.QueueStats = stats
	return summary
}

func (m *Manager) trackActive(worker int, job *queue.Job) {
	snapshot := *job
	m.mu.Lock()
	m.active[worker] = &snapshot
	m.mu.Unlock()
}

func (m *Manager) untrackActive(worker int) {
	m.mu.Lock()
	delete(m.active, worker)
	m.mu.Unlock()
}

func (m *Manager) recordFinished(job *queue.Job) {
	snapshot := *job
	m.mu.Lock()
	m.finished++
	m.lastJob = &snapshot
	m.mu.Unlock()
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
