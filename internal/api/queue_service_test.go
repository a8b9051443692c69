package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidlingo/internal/queue"
)

type mockQueueStore struct {
	jobs     []*queue.Job
	stats    map[queue.Status]int
	jobErr   error
	statsErr error
}

func (m *mockQueueStore) List(context.Context, ...queue.Status) ([]*queue.Job, error) {
	return m.jobs, m.jobErr
}

func (m *mockQueueStore) Stats(context.Context) (map[queue.Status]int, error) {
	return m.stats, m.statsErr
}

func (m *mockQueueStore) GetByJobID(_ context.Context, jobID string) (*queue.Job, error) {
	for _, job := range m.jobs {
		if job.JobID == jobID {
			return job, m.jobErr
		}
	}
	return nil, m.jobErr
}

func (m *mockQueueStore) RetryFailed(context.Context, ...string) (int64, error) {
	return 0, nil
}

func (m *mockQueueStore) Remove(context.Context, string) (bool, error) {
	return false, nil
}

func TestQueueServiceList(t *testing.T) {
	now := time.Now().UTC()
	store := &mockQueueStore{
		jobs: []*queue.Job{{
			ID:           1,
			JobID:        "job-1",
			SourcePath:   "/uploads/job-1/clip.mp4",
			OriginalName: "clip.mp4",
			Status:       queue.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}},
	}
	svc := NewQueueService(store, "/processed")
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected job count: %d", len(got))
	}
	if got[0].Name != "clip.mp4" {
		t.Fatalf("unexpected name: %q", got[0].Name)
	}
	if got[0].Status != string(queue.StatusPending) {
		t.Fatalf("unexpected status: %q", got[0].Status)
	}
	if got[0].CreatedAt == "" || got[0].UpdatedAt == "" {
		t.Fatalf("expected timestamps to be formatted")
	}
	if got[0].Downloads != nil {
		t.Fatalf("pending job should have no downloads")
	}
}

func TestQueueServiceListError(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{jobErr: errors.New("boom")}, "")
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestQueueServiceStatsZeroFills(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{stats: map[queue.Status]int{queue.StatusFailed: 2}}, "")
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats["failed"] != 2 {
		t.Fatalf("failed = %d, want 2", stats["failed"])
	}
	if count, ok := stats["pending"]; !ok || count != 0 {
		t.Fatalf("expected zero-filled pending, got %v", stats)
	}
	if len(stats) != len(queue.AllStatuses()) {
		t.Fatalf("expected every status present, got %d", len(stats))
	}
}

func TestQueueServiceDescribeMissing(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{}, "")
	job, err := svc.Describe(context.Background(), "nope")
	if err != nil || job != nil {
		t.Fatalf("Describe = %v, %v; want nil, nil", job, err)
	}
}

func TestNilQueueService(t *testing.T) {
	var svc *QueueService
	if jobs, err := svc.List(context.Background()); jobs != nil || err != nil {
		t.Fatalf("nil service List = %v, %v", jobs, err)
	}
	if NewQueueService(nil, "") != nil {
		t.Fatal("expected nil service for nil store")
	}
}
