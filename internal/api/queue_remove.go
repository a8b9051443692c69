package api

import (
	"context"
	"errors"

	"vidlingo/internal/queue"
)

// QueueRemoveService captures queue operations needed by per-job remove workflows.
type QueueRemoveService interface {
	Remove(ctx context.Context, jobID string) (bool, error)
}

type RemoveOutcome string

const (
	RemoveRemoved  RemoveOutcome = "removed"
	RemoveNotFound RemoveOutcome = "not_found"
	RemoveActive   RemoveOutcome = "processing"
)

type RemoveJobResult struct {
	JobID   string        `json:"job_id"`
	Outcome RemoveOutcome `json:"outcome"`
}

type RemoveJobsResult struct {
	RemovedCount int64             `json:"removed_count"`
	Jobs         []RemoveJobResult `json:"jobs"`
}

// RemoveJobs removes jobs one-by-one so each identifier reports its outcome.
// Jobs a worker owns are reported as processing and left in place.
func RemoveJobs(ctx context.Context, service QueueRemoveService, jobIDs []string) (RemoveJobsResult, error) {
	result := RemoveJobsResult{Jobs: make([]RemoveJobResult, 0, len(jobIDs))}
	for _, id := range jobIDs {
		removed, err := service.Remove(ctx, id)
		if errors.Is(err, queue.ErrJobActive) {
			result.Jobs = append(result.Jobs, RemoveJobResult{JobID: id, Outcome: RemoveActive})
			continue
		}
		if err != nil {
			return RemoveJobsResult{}, err
		}
		if removed {
			result.RemovedCount++
			result.Jobs = append(result.Jobs, RemoveJobResult{JobID: id, Outcome: RemoveRemoved})
			continue
		}
		result.Jobs = append(result.Jobs, RemoveJobResult{JobID: id, Outcome: RemoveNotFound})
	}
	return result, nil
}
