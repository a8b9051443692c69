package workflow

import (
	"context"
	"errors"
	"log/slog"

	"vidlingo/internal/logging"
	"vidlingo/internal/notifications"
	"vidlingo/internal/queue"
)

// Enqueued announces a newly queued job: it is published to subscribers, a
// queued notification is sent, and an idle worker is woken.
func (m *Manager) Enqueued(ctx context.Context, job *queue.Job) {
	if job == nil {
		return
	}
	m.hub.Publish(*job)
	m.notify(ctx, m.logger, notifications.EventJobQueued, job)
	m.Wake()
}

// JobPayload builds the notification fields for job.
func JobPayload(job *queue.Job) notifications.Payload {
	payload := notifications.Payload{
		"jobID":  job.JobID,
		"name":   job.DisplayName(),
		"target": job.TargetLanguage,
		"status": string(job.Status),
	}
	if job.VideoPath != "" {
		payload["video"] = job.VideoPath
	}
	if job.ErrorKind != "" {
		payload["kind"] = job.ErrorKind
	}
	if job.ErrorMessage != "" {
		payload["error"] = job.ErrorMessage
	}
	if len(job.ObjectKeys) > 0 {
		payload["objects"] = job.ObjectKeys
	}
	return payload
}

func (m *Manager) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, job *queue.Job) {
	if m.notifier == nil || job == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, JobPayload(job)); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, notification not sent", logging.String("event", string(event)))
			return
		}
		logger.Warn("notification failed",
			logging.Error(err),
			logging.String("event", string(event)),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check ntfy topic or amqp_url"),
		)
	}
}
