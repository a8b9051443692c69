// Package workflow runs queued translation jobs on a bounded pool of workers.
//
// Each worker claims the oldest pending job from the SQLite queue, runs the
// pipeline orchestrator against it, and persists every state transition as
// the job status so the API and CLI can observe progress. While a job runs a
// heartbeat keeps it owned; a reclaimer returns jobs whose heartbeat went
// stale to pending. Finished jobs get a report file next to their artifacts,
// optional upload to object storage, and a notification.
//
// Job snapshots are published on a Hub after each persisted change so the
// websocket endpoint can stream them without polling the database.
package workflow
