package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidlingo/internal/logging"
	"vidlingo/internal/notifications"
	"vidlingo/internal/pipeline"
	"vidlingo/internal/queue"
	"vidlingo/internal/services"
)

// OutputDir returns the per-job artifact directory under the processed dir.
func (m *Manager) OutputDir(job *queue.Job) string {
	return filepath.Join(m.cfg.Paths.ProcessedDir, job.JobID)
}

func (m *Manager) processJob(ctx context.Context, worker int, workerLogger *slog.Logger, job *queue.Job) {
	jobCtx := services.WithJobID(ctx, job.JobID)
	jobCtx = services.WithRequestID(jobCtx, uuid.NewString())

	base, closeLog := m.jobLogs.Open(workerLogger, job)
	defer closeLog()
	logger := logging.WithContext(jobCtx, base)

	m.trackActive(worker, job)
	defer m.untrackActive(worker)
	m.hub.Publish(*job)
	m.notify(jobCtx, logger, notifications.EventJobStarted, job)

	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("input", job.SourcePath),
		logging.String("target_language", job.TargetLanguage),
	)

	hbCtx, stopHeartbeat := context.WithCancel(jobCtx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	started := time.Now()
	result, runErr := m.runner.Run(jobCtx, pipeline.Request{
		JobID:          job.JobID,
		InputPath:      job.SourcePath,
		OutputDir:      m.OutputDir(job),
		TargetLanguage: job.TargetLanguage,
	}, m.observer(jobCtx, logger, worker, job))

	stopHeartbeat()
	hbWG.Wait()

	if runErr != nil && ctx.Err() != nil {
		logger.Info("job interrupted by shutdown",
			logging.String(logging.FieldEventType, "job_interrupted"),
			logging.String("status", string(job.Status)),
		)
		return
	}

	if runErr != nil {
		m.handleFailure(ctx, logger, job, runErr, time.Since(started))
		return
	}
	m.handleSuccess(ctx, logger, job, result, time.Since(started))
}

// observer persists state transitions and sampled progress for job.
func (m *Manager) observer(ctx context.Context, logger *slog.Logger, worker int, job *queue.Job) pipeline.Observer {
	sampler := logging.NewProgressSampler(5)
	persist := func(status queue.Status, progress queue.Progress) {
		job.Status = status
		job.Progress = progress
		if err := m.store.UpdateProgress(ctx, job.ID, status, progress); err != nil && ctx.Err() == nil {
			logger.Warn("progress update failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "progress_persist_failed"),
				logging.String(logging.FieldImpact, "status readers see stale progress"),
			)
		}
		m.trackActive(worker, job)
		m.hub.Publish(*job)
	}
	return pipeline.ObserverFuncs{
		State: func(state pipeline.State) {
			status := queue.Status(state)
			if !status.IsProcessing() {
				return
			}
			sampler.Reset()
			logger.Info("stage started",
				logging.String(logging.FieldEventType, "stage_start"),
				logging.String(logging.FieldStage, string(state)),
			)
			persist(status, queue.Progress{Stage: state.Label(), Percent: 0, Message: state.Label() + " started"})
		},
		Progress: func(state pipeline.State, percent float64, message string) {
			status := queue.Status(state)
			if !status.IsProcessing() {
				return
			}
			if !sampler.ShouldLog(percent, string(state)) && percent < 100 {
				return
			}
			logger.Debug("stage progress",
				logging.String(logging.FieldStage, string(state)),
				logging.Float64(logging.FieldProgressPercent, percent),
				logging.String("message", message),
			)
			persist(status, queue.Progress{Stage: state.Label(), Percent: percent, Message: message})
		},
	}
}

func (m *Manager) handleSuccess(ctx context.Context, logger *slog.Logger, job *queue.Job, result pipeline.Result, elapsed time.Duration) {
	now := time.Now().UTC()
	job.Status = queue.StatusCompleted
	job.ErrorKind = ""
	job.ErrorMessage = ""
	job.SubtitlePath = result.SubtitlePath
	job.AudioPath = result.AudioPath
	job.VideoPath = result.VideoPath
	job.FinishedAt = &now
	job.HeartbeatAt = nil
	job.Progress = queue.Progress{
		Stage:   pipeline.StateDone.Label(),
		Percent: 100,
		Message: fmt.Sprintf("Translated %d segments to %s", result.SegmentCount, job.TargetLanguage),
	}

	if m.uploader != nil {
		keys, err := m.uploader.UploadArtifacts(ctx, job.JobID, result.Paths()...)
		job.ObjectKeys = keys
		if err != nil {
			job.Progress.Message = fmt.Sprintf("%s; artifact upload failed: %v", job.Progress.Message, err)
			logging.WarnWithContext(logger, "artifact upload failed", "artifact_upload_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check storage endpoint and credentials"),
				logging.String(logging.FieldImpact, "artifacts remain local only"),
			)
		}
	}

	if path, err := WriteResponseReport(m.OutputDir(job), job, result); err != nil {
		logger.Warn("response report not written", logging.Error(err), logging.String("path", path))
	}

	if err := m.store.Update(ctx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job result",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_persist_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
	m.recordFinished(job)
	m.hub.Publish(*job)
	m.notify(ctx, logger, notifications.EventJobCompleted, job)

	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output", job.VideoPath),
		logging.Int("segments", result.SegmentCount),
		logging.String("detected_language", result.DetectedLanguage),
		logging.DurationMS(elapsed),
	)
}

func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, job *queue.Job, runErr error, elapsed time.Duration) {
	now := time.Now().UTC()
	kind := services.KindOf(runErr)
	message := strings.TrimSpace(runErr.Error())

	job.Status = queue.StatusFailed
	job.ErrorKind = kind
	job.ErrorMessage = message
	job.FinishedAt = &now
	job.HeartbeatAt = nil
	job.Progress = queue.Progress{
		Stage:   pipeline.StateFailed.Label(),
		Percent: job.Progress.Percent,
		Message: message,
	}

	if path, err := WriteErrorReport(m.OutputDir(job), job); err != nil {
		logger.Warn("error report not written", logging.Error(err), logging.String("path", path))
	}

	if err := m.store.Update(ctx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job failure",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_persist_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
	m.setLastError(runErr)
	m.recordFinished(job)
	m.hub.Publish(*job)
	m.notify(ctx, logger, notifications.EventJobFailed, job)

	logger.Error("job failed",
		logging.String(logging.FieldEventType, "job_failed"),
		logging.String(logging.FieldErrorKind, kind),
		logging.String(logging.FieldStage, services.StageOf(runErr)),
		logging.String(logging.FieldErrorHint, hintFor(kind)),
		logging.Error(runErr),
		logging.DurationMS(elapsed),
	)
}

func hintFor(kind string) string {
	switch kind {
	case services.KindValidation:
		return "upload a supported video file"
	case services.KindExtraction:
		return "check that the video has an audio track and ffmpeg is installed"
	case services.KindTranscription:
		return "check whisperx installation and that the audio contains speech"
	case services.KindTranslation:
		return "check translation provider reachability"
	case services.KindSynthesis:
		return "check text-to-speech endpoint reachability"
	case services.KindReplacement:
		return "check ffmpeg output and disk space"
	default:
		return "check logs for details"
	}
}
