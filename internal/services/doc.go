// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - The closed set of pipeline error kinds plus the Wrap helper that tags a
//     failure with its kind, stage, and operation.
//
// Subpackages wrap the external engines (WhisperX, translation endpoints,
// speech synthesis, LLM chat completions).
package services
