package api

import (
	"context"
	"errors"
	"testing"
)

type queueActionStub struct {
	jobs    map[string]*Job
	retried []string
}

func (s *queueActionStub) Describe(_ context.Context, jobID string) (*Job, error) {
	if job, ok := s.jobs[jobID]; ok {
		return job, nil
	}
	return nil, nil
}

func (s *queueActionStub) Retry(_ context.Context, jobIDs ...string) (int64, error) {
	if len(jobIDs) != 1 {
		return 0, errors.New("expected one id")
	}
	s.retried = append(s.retried, jobIDs[0])
	return 1, nil
}

func TestRetryFailedJobsOnlyRetriesFailed(t *testing.T) {
	stub := &queueActionStub{
		jobs: map[string]*Job{
			"failed":  {JobID: "failed", Status: "failed"},
			"pending": {JobID: "pending", Status: "pending"},
		},
	}

	result, err := RetryFailedJobs(context.Background(), stub, []string{"failed", "pending", "missing"})
	if err != nil {
		t.Fatalf("RetryFailedJobs: %v", err)
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("UpdatedCount = %d, want 1", result.UpdatedCount)
	}
	if len(stub.retried) != 1 || stub.retried[0] != "failed" {
		t.Fatalf("retried = %v, want [failed]", stub.retried)
	}
	want := []RetryOutcome{RetryUpdated, RetryNotFailed, RetryNotFound}
	for i, outcome := range want {
		if result.Jobs[i].Outcome != outcome {
			t.Fatalf("job %d outcome = %s, want %s", i, result.Jobs[i].Outcome, outcome)
		}
	}
	if result.Jobs[0].Status != "pending" {
		t.Fatalf("retried status = %q, want pending", result.Jobs[0].Status)
	}
}
