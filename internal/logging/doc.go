// Package logging assembles the slog loggers used by the vidlingo daemon and
// CLI.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with job IDs, pipeline stages, and
// request IDs. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
