package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ProcessingStartedMessage is returned when an upload is accepted.
const ProcessingStartedMessage = "Processing started. Please wait..."

// Job describes a queue entry in a transport-friendly format.
type Job struct {
	ID             int64       `json:"id"`
	JobID          string      `json:"job_id"`
	Name           string      `json:"name"`
	SourcePath     string      `json:"source_path"`
	TargetLanguage string      `json:"target_language"`
	Status         string      `json:"status"`
	Progress       JobProgress `json:"progress"`
	ErrorKind      string      `json:"error_kind,omitempty"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	SubtitlePath   string      `json:"subtitle_path,omitempty"`
	AudioPath      string      `json:"audio_path,omitempty"`
	VideoPath      string      `json:"video_path,omitempty"`
	ObjectKeys     []string    `json:"object_keys,omitempty"`
	Downloads      *Downloads  `json:"downloads,omitempty"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
	StartedAt      string      `json:"started_at,omitempty"`
	FinishedAt     string      `json:"finished_at,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Downloads holds the /download URLs of a completed job's artifacts.
type Downloads struct {
	Subtitles string `json:"srt_file,omitempty"`
	Audio     string `json:"translated_audio,omitempty"`
	Video     string `json:"output_video,omitempty"`
}

// WorkflowStatus summarizes worker pool state.
type WorkflowStatus struct {
	Running    bool           `json:"running"`
	Workers    int            `json:"workers"`
	ActiveJobs []Job          `json:"active_jobs"`
	Finished   int            `json:"finished"`
	QueueStats map[string]int `json:"queue_stats"`
	LastError  string         `json:"last_error,omitempty"`
	LastJob    *Job           `json:"last_job,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DatabaseStatus reports queue database diagnostics.
type DatabaseStatus struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Integrity  bool   `json:"integrity"`
	TotalJobs  int    `json:"total_jobs"`
	Error      string `json:"error,omitempty"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Failed     int    `json:"failed"`
	Completed  int    `json:"completed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queue_db_path"`
	LockFilePath string             `json:"lock_file_path"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Database     DatabaseStatus     `json:"database"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message   string `json:"message"`
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
