package workflow

import (
	"log/slog"
	"path/filepath"
	"strings"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
	"vidlingo/internal/queue"
)

// JobLogDirName is the subdirectory of the log dir holding per-job logs.
const JobLogDirName = "jobs"

// JobLogger manages dedicated log files for individual jobs.
type JobLogger struct {
	dir    string
	level  string
	format string
}

// NewJobLogger creates a job logger rooted at <log_dir>/jobs. Without a log
// directory job logs are disabled.
func NewJobLogger(cfg *config.Config) *JobLogger {
	j := &JobLogger{level: "info", format: "json"}
	if cfg == nil {
		return j
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		j.dir = filepath.Join(dir, JobLogDirName)
	}
	if lvl := strings.TrimSpace(cfg.Logging.Level); lvl != "" {
		j.level = lvl
	}
	return j
}

// Dir returns the job log directory, empty when disabled.
func (j *JobLogger) Dir() string {
	return j.dir
}

// Path returns the log file for job.
func (j *JobLogger) Path(job *queue.Job) string {
	if j.dir == "" || job == nil {
		return ""
	}
	return filepath.Join(j.dir, job.JobID+".log")
}

// Open returns a logger writing to base and the job's log file, plus a
// function that closes the file. When the file cannot be opened base is
// returned alone.
func (j *JobLogger) Open(base *slog.Logger, job *queue.Job) (*slog.Logger, func()) {
	path := j.Path(job)
	if path == "" {
		return base, func() {}
	}
	fileLogger, closer, err := logging.NewFile(path, logging.Options{Level: j.level, Format: j.format})
	if err != nil {
		base.Warn("job log unavailable",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldEventType, "job_log_open_failed"),
			logging.String(logging.FieldImpact, "job output only in daemon log"),
		)
		return base, func() {}
	}
	return slog.New(logging.Tee(base.Handler(), fileLogger.Handler())), func() { _ = closer.Close() }
}
