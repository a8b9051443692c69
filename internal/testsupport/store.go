package testsupport

import (
	"context"
	"testing"

	"vidlingo/internal/config"
	"vidlingo/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a pending job for sourcePath targeting French.
func NewJob(t testing.TB, store *queue.Store, sourcePath string) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), sourcePath, "", "fr")
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

// SetStatus persists status on job.
func SetStatus(t testing.TB, store *queue.Store, job *queue.Job, status queue.Status) {
	t.Helper()

	job.Status = status
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("store.Update: %v", err)
	}
}
