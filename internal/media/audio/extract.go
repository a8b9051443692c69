package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vidlingo/internal/logging"
	"vidlingo/internal/media/ffprobe"
	"vidlingo/internal/services"
)

const extractStage = "extracting"

// ExtractArgs returns the ffmpeg argv that writes the first audio stream of
// source to dest as signed 16-bit PCM, keeping the source sample rate and
// channel layout.
func ExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// Extractor pulls the speech track out of a video file.
type Extractor struct {
	ffmpegBinary  string
	ffprobeBinary string
	run           CommandRunner
	inspect       ffprobe.Runner
	logger        *slog.Logger
}

// NewExtractor builds an extractor for the given binaries. Empty names fall
// back to ffmpeg and ffprobe on PATH.
func NewExtractor(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Extractor {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		run:           execRunner,
		logger:        logging.NewComponentLogger(logger, "audio"),
	}
}

// WithCommandRunner replaces the ffmpeg runner (for testing).
func (e *Extractor) WithCommandRunner(run CommandRunner) *Extractor {
	e.run = run
	return e
}

// WithInspectRunner replaces the ffprobe runner (for testing).
func (e *Extractor) WithInspectRunner(run ffprobe.Runner) *Extractor {
	e.inspect = run
	return e
}

// Extract writes the audio of videoPath to destPath, overwriting it. Inputs
// that cannot be read or carry no audio stream fail with ErrExtraction and
// leave nothing at destPath.
func (e *Extractor) Extract(ctx context.Context, videoPath, destPath string) error {
	if err := requireFile(videoPath); err != nil {
		return services.Wrap(services.ErrExtraction, extractStage, "open input", "video not readable", err)
	}

	media, err := ffprobe.InspectWith(ctx, e.inspect, e.ffprobeBinary, videoPath)
	if err != nil {
		return services.Wrap(services.ErrExtraction, extractStage, "inspect", "unreadable media container", err)
	}
	if media.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrExtraction, extractStage, "inspect", "video has no audio track", nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return services.Wrap(services.ErrExtraction, extractStage, "prepare output", "create work directory", err)
	}

	stream, _ := media.FirstAudioStream()
	logging.WithContext(ctx, e.logger).Debug("extracting audio",
		logging.String("input", videoPath),
		logging.String("output", destPath),
		logging.String("codec", stream.CodecName),
		logging.Int("channels", stream.Channels),
		logging.String("language", stream.Language()),
		logging.Int("video_streams", media.VideoStreamCount()),
		logging.Int64("size_bytes", media.SizeBytes()),
		logging.Float64("duration_seconds", media.DurationSeconds()),
	)

	if err := e.run(ctx, e.ffmpegBinary, ExtractArgs(videoPath, destPath)...); err != nil {
		_ = os.Remove(destPath)
		return services.Wrap(services.ErrExtraction, extractStage, "ffmpeg", "audio extraction failed", fmt.Errorf("%w: %w", services.ErrExternalTool, err))
	}
	if err := requireOutput(destPath); err != nil {
		_ = os.Remove(destPath)
		return services.Wrap(services.ErrExtraction, extractStage, "verify output", "ffmpeg produced no audio", err)
	}
	return nil
}
