package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ResetProcessing returns every job in a processing status to pending. The
// daemon calls it at startup since no worker can own a job yet.
func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	args := append([]any{StatusPending, "Reset after restart", nowString()}, statusArgs(ProcessingStatuses)...)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, progress_stage = ?, progress_percent = 0, progress_message = NULL,
             heartbeat_at = NULL, started_at = NULL, updated_at = ?
         WHERE status IN (`+makePlaceholders(len(ProcessingStatuses))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset processing jobs: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat records that a worker still owns the job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := nowString()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET heartbeat_at = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// UpdateProgress moves a job to status and records its progress without
// touching result or error fields.
func (s *Store) UpdateProgress(ctx context.Context, id int64, status Status, progress Progress) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		status,
		nullableString(strings.TrimSpace(progress.Stage)),
		clampPercent(progress.Percent),
		nullableString(strings.TrimSpace(progress.Message)),
		nowString(),
		id,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// ReclaimStale returns processing jobs whose heartbeat is older than cutoff
// to pending.
func (s *Store) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := append([]any{StatusPending, "Reclaimed from stale processing", nowString()}, statusArgs(ProcessingStatuses)...)
	args = append(args, cutoff.UTC().Format(timestampLayout))
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, progress_stage = ?, progress_percent = 0, progress_message = NULL,
             heartbeat_at = NULL, updated_at = ?
         WHERE status IN (`+makePlaceholders(len(ProcessingStatuses))+`)
           AND heartbeat_at IS NOT NULL AND heartbeat_at < ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed jobs back to pending. With no ids every failed
// job is retried.
func (s *Store) RetryFailed(ctx context.Context, jobIDs ...string) (int64, error) {
	query := `UPDATE jobs
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_kind = NULL, error_message = NULL,
            started_at = NULL, finished_at = NULL, heartbeat_at = NULL, updated_at = ?
        WHERE status = ?`
	args := []any{StatusPending, nowString(), StatusFailed}
	if len(jobIDs) > 0 {
		query += ` AND job_id IN (` + makePlaceholders(len(jobIDs)) + `)`
		for _, id := range jobIDs {
			args = append(args, strings.TrimSpace(id))
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed jobs: %w", err)
	}
	return res.RowsAffected()
}

func clampPercent(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}
