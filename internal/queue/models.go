package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending          Status = "pending"
	StatusExtracting       Status = "extracting"
	StatusTranscribing     Status = "transcribing"
	StatusTranslating      Status = "translating"
	StatusWritingSubtitles Status = "writing_subtitles"
	StatusSynthesizing     Status = "synthesizing"
	StatusReplacing        Status = "replacing"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// DaemonStopReason is the error message set when jobs are interrupted by shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusTranscribing,
	StatusTranslating,
	StatusWritingSubtitles,
	StatusSynthesizing,
	StatusReplacing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ProcessingStatuses lists the statuses of a job a worker currently owns.
var ProcessingStatuses = []Status{
	StatusExtracting,
	StatusTranscribing,
	StatusTranslating,
	StatusWritingSubtitles,
	StatusSynthesizing,
	StatusReplacing,
}

var processingSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(ProcessingStatuses))
	for _, status := range ProcessingStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a user-supplied value into a Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsProcessing reports whether status is owned by a worker.
func (s Status) IsProcessing() bool {
	_, ok := processingSet[s]
	return ok
}

// IsTerminal reports whether no further work happens in status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    int      `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	MissingColumns   []string `json:"missing_columns,omitempty"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalJobs        int      `json:"total_jobs"`
	Error            string   `json:"error,omitempty"`
}

// HealthSummary describes aggregated job counts per lifecycle group.
type HealthSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}

// Progress is the latest progress report of a job.
type Progress struct {
	Stage   string  `json:"stage,omitempty"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// Job is one translation request persisted in SQLite.
type Job struct {
	ID             int64      `json:"id"`
	JobID          string     `json:"job_id"`
	SourcePath     string     `json:"source_path"`
	OriginalName   string     `json:"original_name,omitempty"`
	TargetLanguage string     `json:"target_language"`
	Status         Status     `json:"status"`
	ErrorKind      string     `json:"error_kind,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SubtitlePath   string     `json:"subtitle_path,omitempty"`
	AudioPath      string     `json:"audio_path,omitempty"`
	VideoPath      string     `json:"video_path,omitempty"`
	ObjectKeys     []string   `json:"object_keys,omitempty"`
	Progress       Progress   `json:"progress"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	HeartbeatAt    *time.Time `json:"heartbeat_at,omitempty"`
}

// DisplayName returns the upload name, falling back to the source file name.
func (j Job) DisplayName() string {
	if name := strings.TrimSpace(j.OriginalName); name != "" {
		return name
	}
	parts := strings.FieldsFunc(j.SourcePath, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return j.JobID
	}
	return parts[len(parts)-1]
}

// ShortID returns the first eight characters of the public identifier.
func (j Job) ShortID() string {
	if len(j.JobID) > 8 {
		return j.JobID[:8]
	}
	return j.JobID
}

// ArtifactPaths returns the non-empty result paths.
func (j Job) ArtifactPaths() []string {
	var out []string
	for _, path := range []string{j.SubtitlePath, j.AudioPath, j.VideoPath} {
		if strings.TrimSpace(path) != "" {
			out = append(out, path)
		}
	}
	return out
}
