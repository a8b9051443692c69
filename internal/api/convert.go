package api

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"vidlingo/internal/deps"
	"vidlingo/internal/queue"
	"vidlingo/internal/workflow"
)

// DownloadPrefix is the route serving files from the processed directory.
const DownloadPrefix = "/download/"

// JobURL returns the polling URL of a job.
func JobURL(jobID string) string {
	return "/api/jobs/" + jobID
}

// FromJob converts a queue record to its API representation. Download URLs
// are filled for completed jobs whose artifacts live under processedDir.
func FromJob(job *queue.Job, processedDir string) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:             job.ID,
		JobID:          job.JobID,
		Name:           job.DisplayName(),
		SourcePath:     job.SourcePath,
		TargetLanguage: job.TargetLanguage,
		Status:         string(job.Status),
		Progress: JobProgress{
			Stage:   job.Progress.Stage,
			Percent: job.Progress.Percent,
			Message: job.Progress.Message,
		},
		ErrorKind:    job.ErrorKind,
		ErrorMessage: job.ErrorMessage,
		SubtitlePath: job.SubtitlePath,
		AudioPath:    job.AudioPath,
		VideoPath:    job.VideoPath,
		ObjectKeys:   append([]string(nil), job.ObjectKeys...),
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
	}
	if job.StartedAt != nil {
		dto.StartedAt = formatTime(*job.StartedAt)
	}
	if job.FinishedAt != nil {
		dto.FinishedAt = formatTime(*job.FinishedAt)
	}
	if job.Status == queue.StatusCompleted {
		downloads := Downloads{
			Subtitles: DownloadURL(processedDir, job.SubtitlePath),
			Audio:     DownloadURL(processedDir, job.AudioPath),
			Video:     DownloadURL(processedDir, job.VideoPath),
		}
		if downloads != (Downloads{}) {
			dto.Downloads = &downloads
		}
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job, processedDir string) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job, processedDir))
	}
	return out
}

// DownloadURL maps an artifact path under processedDir to its /download URL.
// Paths outside the directory yield an empty string.
func DownloadURL(processedDir, artifact string) string {
	if strings.TrimSpace(artifact) == "" || strings.TrimSpace(processedDir) == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Clean(processedDir), filepath.Clean(artifact))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return DownloadPrefix + path.Clean(filepath.ToSlash(rel))
}

// FromStatusSummary converts workflow diagnostics into the API shape.
func FromStatusSummary(summary workflow.StatusSummary, processedDir string) WorkflowStatus {
	status := WorkflowStatus{
		Running:    summary.Running,
		Workers:    summary.Workers,
		Finished:   summary.Finished,
		QueueStats: MergeQueueStats(summary.QueueStats),
		LastError:  summary.LastError,
		ActiveJobs: make([]Job, 0, len(summary.ActiveJobs)),
	}
	for i := range summary.ActiveJobs {
		status.ActiveJobs = append(status.ActiveJobs, FromJob(&summary.ActiveJobs[i], processedDir))
	}
	if summary.LastJob != nil {
		last := FromJob(summary.LastJob, processedDir)
		status.LastJob = &last
	}
	return status
}

// MergeQueueStats returns counts for every known status, zero-filled.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		out[string(status)] = stats[status]
	}
	return out
}

// FromDependencies converts dependency checks into the API shape.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// FromDatabaseHealth merges database diagnostics with the lifecycle summary.
func FromDatabaseHealth(health queue.DatabaseHealth, summary queue.HealthSummary) DatabaseStatus {
	return DatabaseStatus{
		Path:       health.DBPath,
		Exists:     health.DatabaseExists,
		Integrity:  health.IntegrityCheck,
		TotalJobs:  health.TotalJobs,
		Error:      health.Error,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Failed:     summary.Failed,
		Completed:  summary.Completed,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
