package api

import (
	"context"

	"vidlingo/internal/queue"
)

// QueueActionService captures queue operations needed by per-job retry workflows.
type QueueActionService interface {
	Describe(ctx context.Context, jobID string) (*Job, error)
	Retry(ctx context.Context, jobIDs ...string) (int64, error)
}

type RetryOutcome string

const (
	RetryUpdated   RetryOutcome = "retried"
	RetryNotFound  RetryOutcome = "not_found"
	RetryNotFailed RetryOutcome = "not_failed"
)

type RetryJobResult struct {
	JobID   string       `json:"job_id"`
	Outcome RetryOutcome `json:"outcome"`
	Status  string       `json:"status,omitempty"`
}

type RetryJobsResult struct {
	UpdatedCount int64            `json:"updated_count"`
	Jobs         []RetryJobResult `json:"jobs"`
}

// RetryFailedJobs validates identifiers and retries only failed jobs.
func RetryFailedJobs(ctx context.Context, service QueueActionService, jobIDs []string) (RetryJobsResult, error) {
	result := RetryJobsResult{Jobs: make([]RetryJobResult, 0, len(jobIDs))}
	for _, id := range jobIDs {
		job, err := service.Describe(ctx, id)
		if err != nil {
			return RetryJobsResult{}, err
		}
		if job == nil {
			result.Jobs = append(result.Jobs, RetryJobResult{JobID: id, Outcome: RetryNotFound})
			continue
		}
		status, ok := queue.ParseStatus(job.Status)
		if !ok || status != queue.StatusFailed {
			result.Jobs = append(result.Jobs, RetryJobResult{JobID: id, Outcome: RetryNotFailed, Status: job.Status})
			continue
		}
		updated, err := service.Retry(ctx, id)
		if err != nil {
			return RetryJobsResult{}, err
		}
		if updated > 0 {
			result.UpdatedCount += updated
			result.Jobs = append(result.Jobs, RetryJobResult{JobID: id, Outcome: RetryUpdated, Status: string(queue.StatusPending)})
			continue
		}
		result.Jobs = append(result.Jobs, RetryJobResult{JobID: id, Outcome: RetryNotFailed, Status: job.Status})
	}
	return result, nil
}
