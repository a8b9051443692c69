package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJob inserts a pending job for sourcePath and assigns it a uuid JobID.
func (s *Store) NewJob(ctx context.Context, sourcePath, originalName, targetLanguage string) (*Job, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("new job: source path required")
	}
	targetLanguage = strings.TrimSpace(targetLanguage)
	if targetLanguage == "" {
		return nil, errors.New("new job: target language required")
	}
	return s.insertJob(ctx, 0, uuid.NewString(), sourcePath, originalName, targetLanguage)
}

// NewJobWithID inserts a pending job under a caller-chosen uuid JobID.
func (s *Store) NewJobWithID(ctx context.Context, jobID, sourcePath, originalName, targetLanguage string) (*Job, error) {
	return s.NewJobWithinCapacity(ctx, 0, jobID, sourcePath, originalName, targetLanguage)
}

// NewJobWithinCapacity is NewJobWithID that refuses with ErrQueueFull when
// capacity unfinished jobs already exist. The count and the insert run as
// one statement, so concurrent callers cannot overshoot. A capacity of zero
// or less disables the limit.
func (s *Store) NewJobWithinCapacity(ctx context.Context, capacity int, jobID, sourcePath, originalName, targetLanguage string) (*Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("new job: invalid job id %q: %w", jobID, err)
	}
	if strings.TrimSpace(sourcePath) == "" || strings.TrimSpace(targetLanguage) == "" {
		return nil, errors.New("new job: source path and target language required")
	}
	return s.insertJob(ctx, capacity, jobID, strings.TrimSpace(sourcePath), originalName, strings.TrimSpace(targetLanguage))
}

func (s *Store) insertJob(ctx context.Context, capacity int, jobID, sourcePath, originalName, targetLanguage string) (*Job, error) {
	timestamp := nowString()
	args := []any{
		jobID,
		sourcePath,
		nullableString(strings.TrimSpace(originalName)),
		targetLanguage,
		StatusPending,
		"Queued",
		0.0,
		"Waiting for a worker",
		timestamp,
		timestamp,
	}
	query := `INSERT INTO jobs (
            job_id, source_path, original_name, target_language, status,
            progress_stage, progress_percent, progress_message, created_at, updated_at
        ) `
	if capacity > 0 {
		active := activeStatuses()
		query += `SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
        WHERE (SELECT COUNT(1) FROM jobs WHERE status IN (` + makePlaceholders(len(active)) + `)) < ?`
		args = append(args, statusArgs(active)...)
		args = append(args, capacity)
	} else {
		query += `VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	if capacity > 0 {
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert job: rows affected: %w", err)
		}
		if affected == 0 {
			return nil, ErrQueueFull
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by row identifier. A missing job returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetByJobID fetches a job by its public identifier. A missing job returns nil, nil.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, strings.TrimSpace(jobID))
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists every mutable field of job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	keys, err := nullableJSONList(job.ObjectKeys)
	if err != nil {
		return fmt.Errorf("encode object keys: %w", err)
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs
         SET source_path = ?, original_name = ?, target_language = ?, status = ?,
             error_kind = ?, error_message = ?, subtitle_path = ?, audio_path = ?,
             video_path = ?, object_keys = ?, progress_stage = ?, progress_percent = ?,
             progress_message = ?, updated_at = ?, started_at = ?, finished_at = ?,
             heartbeat_at = ?
         WHERE id = ?`,
		job.SourcePath,
		nullableString(job.OriginalName),
		job.TargetLanguage,
		job.Status,
		nullableString(job.ErrorKind),
		nullableString(job.ErrorMessage),
		nullableString(job.SubtitlePath),
		nullableString(job.AudioPath),
		nullableString(job.VideoPath),
		keys,
		nullableString(job.Progress.Stage),
		job.Progress.Percent,
		nullableString(job.Progress.Message),
		job.UpdatedAt.Format(timestampLayout),
		nullableTime(job.StartedAt),
		nullableTime(job.FinishedAt),
		nullableTime(job.HeartbeatAt),
		job.ID,
	); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		args = statusArgs(statuses)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ClaimNext atomically moves the oldest pending job to extracting and
// returns it. It returns nil, nil when nothing is pending.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)
	var job *Job
	err := retryOnBusy(ctx, func() error {
		now := nowString()
		row := s.db.QueryRowContext(
			ctx,
			`UPDATE jobs
             SET status = ?, progress_stage = ?, progress_percent = 0, progress_message = ?,
                 error_kind = NULL, error_message = NULL, started_at = ?, finished_at = NULL,
                 heartbeat_at = ?, updated_at = ?
             WHERE id = (SELECT id FROM jobs WHERE status = ? ORDER BY id LIMIT 1)
             RETURNING `+jobColumns,
			StatusExtracting,
			"Extracting audio",
			"Extracting audio started",
			now,
			now,
			now,
			StatusPending,
		)
		claimed, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			job = nil
			return nil
		}
		if err != nil {
			return err
		}
		job = claimed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return job, nil
}

// CountActive returns the number of pending and processing jobs.
func (s *Store) CountActive(ctx context.Context) (int, error) {
	statuses := activeStatuses()
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM jobs WHERE status IN (`+makePlaceholders(len(statuses))+`)`,
		statusArgs(statuses)...,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count active jobs: %w", err)
	}
	return count, nil
}

func activeStatuses() []Status {
	return append([]Status{StatusPending}, ProcessingStatuses...)
}

// Remove deletes a job that no worker owns. It reports false when the job
// does not exist and ErrJobActive when it is processing.
func (s *Store) Remove(ctx context.Context, jobID string) (bool, error) {
	job, err := s.GetByJobID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	if job.Status.IsProcessing() {
		return false, ErrJobActive
	}
	args := append([]any{job.ID}, statusArgs(ProcessingStatuses)...)
	res, err := s.execWithRetry(ctx,
		`DELETE FROM jobs WHERE id = ? AND status NOT IN (`+makePlaceholders(len(ProcessingStatuses))+`)`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, ErrJobActive
	}
	return true, nil
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// PurgeFinishedBefore removes terminal jobs finished before cutoff and
// returns them so callers can delete their files.
func (s *Store) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status IN (?, ?) AND finished_at IS NOT NULL AND finished_at < ? ORDER BY id`,
		StatusCompleted, StatusFailed, cutoff.UTC().Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query finished jobs: %w", err)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("query finished jobs: %w", err)
	}
	for _, job := range jobs {
		if _, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, job.ID); err != nil {
			return nil, fmt.Errorf("purge job %s: %w", job.JobID, err)
		}
	}
	return jobs, nil
}
