// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and decodes its streams and format sections;
// Parse decodes output captured elsewhere. Result helpers expose stream
// counts, the first audio stream, and duration.
package ffprobe
