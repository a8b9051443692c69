// Package queue persists translation jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages the database connection, schema initialization, stats
// queries, heartbeat tracking, stale-job recovery, and the status
// transitions that mirror the pipeline states. Jobs carry progress, result
// paths, uploaded object keys, and the typed error of a failed run so the
// workers, the API, and the CLI share one view of each job.
//
// The database is treated as transient storage for in-flight and recent
// jobs rather than a long-term archive. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package queue
