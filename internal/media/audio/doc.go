// Package audio wraps the two ffmpeg invocations of the pipeline: pulling the
// speech track out of a video as PCM at its source rate, and muxing a
// synthesized track back over the original video stream.
//
// argv construction is pure (ExtractArgs, ReplaceArgs) and the command runner
// is injectable, so callers can test without ffmpeg installed.
package audio
