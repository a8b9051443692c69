package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vidlingo/internal/logging"
	"vidlingo/internal/services"
)

const replaceStage = "replacing"

// Default output codecs.
const (
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

// ReplaceArgs returns the ffmpeg argv that takes the first video stream of
// video and the first audio stream of audio and encodes them into dest.
// Durations are left to the muxer; no -shortest is applied.
func ReplaceArgs(video, audio, dest, videoCodec, audioCodec string) []string {
	if strings.TrimSpace(videoCodec) == "" {
		videoCodec = DefaultVideoCodec
	}
	if strings.TrimSpace(audioCodec) == "" {
		audioCodec = DefaultAudioCodec
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", videoCodec,
		"-c:a", audioCodec,
		dest,
	}
}

// Replacer muxes a new audio track over a video.
type Replacer struct {
	ffmpegBinary string
	videoCodec   string
	audioCodec   string
	run          CommandRunner
	logger       *slog.Logger
}

// NewReplacer builds a replacer using the given ffmpeg binary and codecs.
func NewReplacer(ffmpegBinary, videoCodec, audioCodec string, logger *slog.Logger) *Replacer {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Replacer{
		ffmpegBinary: ffmpegBinary,
		videoCodec:   videoCodec,
		audioCodec:   audioCodec,
		run:          execRunner,
		logger:       logging.NewComponentLogger(logger, "audio"),
	}
}

// WithCommandRunner replaces the ffmpeg runner (for testing).
func (r *Replacer) WithCommandRunner(run CommandRunner) *Replacer {
	r.run = run
	return r
}

// Replace writes destPath with videoPath's picture and audioPath's sound.
func (r *Replacer) Replace(ctx context.Context, videoPath, audioPath, destPath string) error {
	if err := requireFile(videoPath); err != nil {
		return services.Wrap(services.ErrReplacement, replaceStage, "open input", "video not readable", err)
	}
	if err := requireFile(audioPath); err != nil {
		return services.Wrap(services.ErrReplacement, replaceStage, "open input", "audio not readable", err)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return services.Wrap(services.ErrReplacement, replaceStage, "prepare output", "create output directory", err)
	}

	args := ReplaceArgs(videoPath, audioPath, destPath, r.videoCodec, r.audioCodec)
	logging.WithContext(ctx, r.logger).Debug("replacing audio track",
		logging.String("input", videoPath),
		logging.String("audio", audioPath),
		logging.String("output", destPath),
	)
	if err := r.run(ctx, r.ffmpegBinary, args...); err != nil {
		_ = os.Remove(destPath)
		return services.Wrap(services.ErrReplacement, replaceStage, "ffmpeg", "audio replacement failed", fmt.Errorf("%w: %w", services.ErrExternalTool, err))
	}
	if err := requireOutput(destPath); err != nil {
		_ = os.Remove(destPath)
		return services.Wrap(services.ErrReplacement, replaceStage, "verify output", "ffmpeg produced no video", err)
	}
	return nil
}
