package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vidlingo/internal/api"
	"vidlingo/internal/logging"
	"vidlingo/internal/queue"
)

const (
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

func (s *apiServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := queue.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+value)
			return
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if jobs == nil {
		jobs = []api.Job{}
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.SortJobsNewestFirst(jobs)})
}

func (s *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.queueSvc.Describe(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	result, err := api.RetryFailedJobs(ctx, retryAdapter{svc: s.queueSvc, daemon: s.daemon}, []string{id})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch result.Jobs[0].Outcome {
	case api.RetryNotFound:
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	case api.RetryNotFailed:
		s.writeError(w, http.StatusConflict, "job is not failed")
		return
	}
	job, err := s.queueSvc.Describe(ctx, id)
	if err != nil || job == nil {
		s.writeError(w, http.StatusInternalServerError, "job reload failed")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := s.daemon.RemoveJob(r.Context(), id)
	switch {
	case errors.Is(err, queue.ErrJobActive):
		s.writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	case !removed:
		s.writeError(w, http.StatusNotFound, "job not found")
	default:
		s.writeJSON(w, http.StatusOK, api.RemoveJobsResult{
			RemovedCount: 1,
			Jobs:         []api.RemoveJobResult{{JobID: id, Outcome: api.RemoveRemoved}},
		})
	}
}

// handleJobEvents streams job snapshots over a websocket until the job is
// terminal or the client goes away. The current snapshot is sent first.
func (s *apiServer) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	updates, unsubscribe := s.daemon.Hub().Subscribe(id)
	defer unsubscribe()

	job, err := s.daemon.store.GetByJobID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(job *queue.Job) error {
		_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
		return conn.WriteJSON(api.FromJob(job, s.cfg.Paths.ProcessedDir))
	}
	finish := func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}

	if err := send(job); err != nil {
		return
	}
	if job.Status.IsTerminal() {
		finish()
		return
	}

	ping := time.NewTicker(eventPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteTimeout)); err != nil {
				return
			}
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := send(&snapshot); err != nil {
				return
			}
			if snapshot.Status.IsTerminal() {
				finish()
				return
			}
		}
	}
}

// retryAdapter routes retries through the daemon so workers are woken.
type retryAdapter struct {
	svc    *api.QueueService
	daemon *Daemon
}

func (a retryAdapter) Describe(ctx context.Context, jobID string) (*api.Job, error) {
	return a.svc.Describe(ctx, jobID)
}

func (a retryAdapter) Retry(ctx context.Context, jobIDs ...string) (int64, error) {
	var total int64
	for _, id := range jobIDs {
		updated, err := a.daemon.RetryJob(ctx, id)
		if err != nil {
			return total, err
		}
		total += updated
	}
	return total, nil
}
