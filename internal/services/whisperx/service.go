package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	langpkg "vidlingo/internal/language"
	"vidlingo/internal/logging"
	"vidlingo/internal/services"
	"vidlingo/internal/transcript"
)

const stage = "transcribing"

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) *Service {
	s.commandRunner = runner
	return s
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	env := os.Environ()
	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		env = append(env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if s.cfg.CacheDir != "" {
		env = append(env, "UV_CACHE_DIR="+s.cfg.CacheDir)
	}
	cmd.Env = env

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX on audioPath, writing its output under workDir,
// and returns the parsed transcript. Segment texts are trimmed and the full
// text joins them with single spaces.
func (s *Service) Transcribe(ctx context.Context, audioPath, workDir string) (transcript.Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "validate", "audio path required", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "open audio", "audio file missing", err)
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "prepare output", "ensure output dir", err)
	}

	started := time.Now()
	args := s.buildArgs(audioPath, workDir)
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		if services.IsCanceled(err) || ctx.Err() != nil {
			return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "whisperx", "transcription canceled", errors.Join(ctx.Err(), err))
		}
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "whisperx", "whisperx failed", fmt.Errorf("%w: %w", services.ErrExternalTool, err))
	}

	jsonPath := OutputPath(audioPath, workDir)
	result, err := LoadTranscript(jsonPath)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "parse output", "whisperx output unusable", err)
	}

	logging.WithContext(ctx, s.logger).Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.Int("segments", len(result.Segments)),
		logging.String("language", result.Language),
		logging.Float64("speech_seconds", result.SpeechSeconds()),
		logging.DurationMS(time.Since(started)),
	)
	return result, nil
}

// OutputPath returns where WhisperX writes JSON for audioPath.
func OutputPath(audioPath, outputDir string) string {
	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, baseName+".json")
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", Model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice, "--compute_type", CUDAComputeType)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

type payloadSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// payload is the JSON structure from WhisperX output.
type payload struct {
	Segments []payloadSegment `json:"segments"`
	Language string           `json:"language"`
}

// LoadTranscript loads a WhisperX JSON file. Segments with blank text are
// dropped; the remaining texts are trimmed.
func LoadTranscript(jsonPath string) (transcript.Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("read whisperx json: %w", err)
	}
	var raw payload
	if err := json.Unmarshal(data, &raw); err != nil {
		return transcript.Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	result := transcript.Transcript{
		Language: langpkg.Normalize(raw.Language),
		Segments: make([]transcript.Segment, 0, len(raw.Segments)),
	}
	for _, seg := range raw.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		result.Segments = append(result.Segments, transcript.Segment{Start: seg.Start, End: end, Text: text})
	}
	result.Text = transcript.JoinSegments(result.Segments)
	return result, nil
}
