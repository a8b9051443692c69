package api

import (
	"context"
	"errors"
	"testing"

	"vidlingo/internal/queue"
)

type queueRemoveStub struct {
	removed map[string]bool
	active  map[string]bool
	errAt   string
}

func (s *queueRemoveStub) Remove(_ context.Context, jobID string) (bool, error) {
	if jobID == s.errAt {
		return false, errors.New("remove failed")
	}
	if s.active[jobID] {
		return false, queue.ErrJobActive
	}
	return s.removed[jobID], nil
}

func TestRemoveJobs(t *testing.T) {
	stub := &queueRemoveStub{
		removed: map[string]bool{"a": true, "c": true},
		active:  map[string]bool{"d": true},
	}

	result, err := RemoveJobs(context.Background(), stub, []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("RemoveJobs: %v", err)
	}
	if result.RemovedCount != 2 {
		t.Fatalf("RemovedCount = %d, want 2", result.RemovedCount)
	}
	want := []RemoveOutcome{RemoveRemoved, RemoveNotFound, RemoveRemoved, RemoveActive}
	if len(result.Jobs) != len(want) {
		t.Fatalf("len(Jobs) = %d, want %d", len(result.Jobs), len(want))
	}
	for i, outcome := range want {
		if result.Jobs[i].Outcome != outcome {
			t.Fatalf("job %d outcome = %s, want %s", i, result.Jobs[i].Outcome, outcome)
		}
	}
}

func TestRemoveJobsError(t *testing.T) {
	stub := &queueRemoveStub{removed: map[string]bool{"a": true}, errAt: "b"}

	if _, err := RemoveJobs(context.Background(), stub, []string{"a", "b"}); err == nil {
		t.Fatal("expected error")
	}
}
