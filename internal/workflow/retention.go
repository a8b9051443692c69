package workflow

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"vidlingo/internal/logging"
	"vidlingo/internal/queue"
)

// pruneExpired removes finished jobs older than workflow.retention_days along
// with their upload, output, and log files.
func (m *Manager) pruneExpired(ctx context.Context) {
	days := m.cfg.Workflow.RetentionDays
	if days <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	jobs, err := m.store.PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn("retention purge failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "retention_purge_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}
		return
	}
	for _, job := range jobs {
		m.RemoveJobFiles(job)
	}
	removed := logging.Prune(m.logger, days, logging.RetentionTarget{Dir: m.jobLogs.Dir(), Pattern: "*.log"})
	if len(jobs) > 0 || removed > 0 {
		m.logger.Info("retention purge completed",
			logging.Int("jobs", len(jobs)),
			logging.Int("orphan_logs", removed),
			logging.String(logging.FieldEventType, "retention_purged"),
		)
	}
}

// RemoveJobFiles deletes the upload, output, and log files of job.
func (m *Manager) RemoveJobFiles(job *queue.Job) {
	if job == nil || job.JobID == "" {
		return
	}
	for _, dir := range []string{
		filepath.Join(m.cfg.Paths.UploadDir, job.JobID),
		m.OutputDir(job),
	} {
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("job cleanup failed", logging.Error(err), logging.String("path", dir))
		}
	}
	if path := m.jobLogs.Path(job); path != "" {
		_ = os.Remove(path)
	}
}
