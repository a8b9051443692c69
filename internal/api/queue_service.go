package api

import (
	"context"

	"vidlingo/internal/queue"
)

// QueueStore abstracts queue persistence interactions needed by the API.
type QueueStore interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByJobID(ctx context.Context, jobID string) (*queue.Job, error)
	RetryFailed(ctx context.Context, jobIDs ...string) (int64, error)
	Remove(ctx context.Context, jobID string) (bool, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store        QueueStore
	processedDir string
}

// NewQueueService constructs a QueueService around the provided store.
func NewQueueService(store QueueStore, processedDir string) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store, processedDir: processedDir}
}

// List returns jobs filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs, s.processedDir), nil
}

// Stats returns queue counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches a single job. It returns nil when the job does not exist.
func (s *QueueService) Describe(ctx context.Context, jobID string) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByJobID(ctx, jobID)
	if err != nil || job == nil {
		return nil, err
	}
	dto := FromJob(job, s.processedDir)
	return &dto, nil
}

// Retry moves the given failed jobs back to pending.
func (s *QueueService) Retry(ctx context.Context, jobIDs ...string) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.RetryFailed(ctx, jobIDs...)
}

// Remove deletes one job that no worker owns.
func (s *QueueService) Remove(ctx context.Context, jobID string) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.Remove(ctx, jobID)
}
