// Package pipeline runs one video through the full dubbing sequence:
// extract audio, transcribe, translate each segment, write subtitles,
// synthesize narration, and remux the video with the new audio.
//
// The Orchestrator owns state transitions and artifact paths only. The
// heavy lifting lives behind small interfaces so the workflow manager and
// the CLI share one implementation, and tests can substitute fakes for
// ffmpeg, WhisperX, and the HTTP backends.
package pipeline
