// Package api defines the wire-format types shared by the HTTP server and
// the CLI. It converts queue and workflow models into transport-friendly
// DTOs so consumers do not couple to internal types.
//
// # Key Types
//
// Job: transport representation of a queue entry with progress, the typed
// error, and download URLs once the job has completed.
//
// WorkflowStatus: worker pool state, active jobs, and queue counts.
//
// DaemonStatus: aggregated runtime information including dependencies and
// queue database health.
//
// # Converters
//
// FromJob: queue.Job -> Job, resolving artifact paths under the processed
// directory into /download URLs.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// # Queue actions
//
// RetryFailedJobs and RemoveJobs apply per-job operations and report an
// outcome for every identifier so callers can render partial success.
//
// # Design Notes
//
// DTOs use snake_case JSON tags, matching the response reports written next
// to the outputs. Timestamps use RFC3339 with milliseconds.
package api
