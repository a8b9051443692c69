package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vidlingo/internal/fileutil"
	"vidlingo/internal/pipeline"
	"vidlingo/internal/queue"
)

// CompletionMessage is the message field of a response report.
const CompletionMessage = "Processing completed successfully!"

// ResponseReport is written as <upload name>_response.json after a job
// completes.
type ResponseReport struct {
	Message         string `json:"message"`
	JobID           string `json:"job_id"`
	SRTFile         string `json:"srt_file"`
	TranslatedAudio string `json:"translated_audio"`
	OutputVideo     string `json:"output_video"`
}

// ResponseReportPath returns the report location for job under dir.
func ResponseReportPath(dir string, job *queue.Job) string {
	return filepath.Join(dir, filepath.Base(job.SourcePath)+"_response.json")
}

// ErrorReportPath returns the failure report location for job under dir.
func ErrorReportPath(dir string, job *queue.Job) string {
	return filepath.Join(dir, filepath.Base(job.SourcePath)+"_error.txt")
}

// WriteResponseReport records the artifact paths of a completed job.
func WriteResponseReport(dir string, job *queue.Job, result pipeline.Result) (string, error) {
	path := ResponseReportPath(dir, job)
	data, err := json.MarshalIndent(ResponseReport{
		Message:         CompletionMessage,
		JobID:           job.JobID,
		SRTFile:         result.SubtitlePath,
		TranslatedAudio: result.AudioPath,
		OutputVideo:     result.VideoPath,
	}, "", "  ")
	if err != nil {
		return path, fmt.Errorf("encode response report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, fmt.Errorf("create report directory: %w", err)
	}
	return path, fileutil.WriteAtomic(path, append(data, '\n'), 0o644)
}

// WriteErrorReport records the error message of a failed job.
func WriteErrorReport(dir string, job *queue.Job) (string, error) {
	path := ErrorReportPath(dir, job)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, fmt.Errorf("create report directory: %w", err)
	}
	return path, fileutil.WriteAtomic(path, []byte(job.ErrorMessage+"\n"), 0o644)
}
