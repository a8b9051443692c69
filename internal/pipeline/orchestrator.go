package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidlingo/internal/logging"
	"vidlingo/internal/services"
	"vidlingo/internal/subtitles"
	"vidlingo/internal/transcript"
	"vidlingo/internal/translate"
)

// ExtractedAudioName is the intermediate audio file inside a job work dir.
const ExtractedAudioName = "extracted_audio.wav"

// Config holds the orchestrator's explicit settings.
type Config struct {
	ProcessedDir   string
	WorkDir        string
	TargetLanguage string
	// SynthesisLanguage defaults to the target language.
	SynthesisLanguage string
	// AllowedExtensions lists accepted input extensions with the leading dot.
	// Empty accepts any extension.
	AllowedExtensions []string
	KeepIntermediates bool
	// StageTimeout bounds each stage. Zero disables the limit.
	StageTimeout time.Duration
}

// Orchestrator runs the pipeline.
type Orchestrator struct {
	cfg         Config
	extractor   Extractor
	transcriber Transcriber
	translator  translate.Translator
	synthesizer Synthesizer
	replacer    Replacer
	logger      *slog.Logger
}

// NewOrchestrator wires the collaborators. Every collaborator is required.
func NewOrchestrator(cfg Config, extractor Extractor, transcriber Transcriber, translator translate.Translator, synthesizer Synthesizer, replacer Replacer, logger *slog.Logger) (*Orchestrator, error) {
	var missing []string
	if extractor == nil {
		missing = append(missing, "extractor")
	}
	if transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if translator == nil {
		missing = append(missing, "translator")
	}
	if synthesizer == nil {
		missing = append(missing, "synthesizer")
	}
	if replacer == nil {
		missing = append(missing, "replacer")
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, string(StateIdle), "configure", "missing "+strings.Join(missing, ", "), nil)
	}
	if strings.TrimSpace(cfg.WorkDir) == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Orchestrator{
		cfg:         cfg,
		extractor:   extractor,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		replacer:    replacer,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Config returns the orchestrator settings.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// OutputPaths returns the artifact paths for inputPath under outputDir.
func OutputPaths(inputPath, outputDir string) Result {
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	base := filepath.Join(outputDir, name+"_translated")
	return Result{
		SubtitlePath: base + ".srt",
		AudioPath:    base + ".mp3",
		VideoPath:    base + ".mp4",
	}
}

// Run executes every stage in order. On failure the returned error carries
// the failing stage's kind and any artifacts already written are left in
// place. A nil observer is allowed.
func (o *Orchestrator) Run(ctx context.Context, req Request, observer Observer) (Result, error) {
	if observer == nil {
		observer = ObserverFuncs{}
	}
	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		jobID = uuid.NewString()
	}
	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, o.logger)

	run := &runState{
		o:        o,
		observer: observer,
		logger:   logger,
		target:   o.targetLanguage(req),
	}

	if err := o.validateInput(req.InputPath); err != nil {
		return run.fail(StateIdle, err)
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = o.cfg.ProcessedDir
	}
	if outputDir == "" {
		return run.fail(StateIdle, services.Wrap(services.ErrConfiguration, string(StateIdle), "configure", "output directory required", nil))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return run.fail(StateIdle, services.Wrap(services.ErrConfiguration, string(StateIdle), "prepare output", "create output directory", err))
	}

	jobWorkDir := filepath.Join(o.cfg.WorkDir, jobID)
	if err := os.MkdirAll(jobWorkDir, 0o755); err != nil {
		return run.fail(StateIdle, services.Wrap(services.ErrConfiguration, string(StateIdle), "prepare work dir", "create work directory", err))
	}
	if !o.cfg.KeepIntermediates {
		defer func() {
			if err := os.RemoveAll(jobWorkDir); err != nil {
				logger.Warn("work directory cleanup failed",
					logging.String(logging.FieldEventType, "work_dir_cleanup_failed"),
					logging.String("path", jobWorkDir),
					logging.Error(err),
				)
			}
		}()
	}

	started := time.Now()
	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "pipeline_start"),
		logging.String("input", req.InputPath),
		logging.String("output", outputDir),
		logging.String("target_language", run.target),
	)

	paths := OutputPaths(req.InputPath, outputDir)
	audioPath := filepath.Join(jobWorkDir, ExtractedAudioName)

	if err := run.stage(ctx, StateExtracting, func(ctx context.Context) error {
		return o.extractor.Extract(ctx, req.InputPath, audioPath)
	}); err != nil {
		return run.fail(StateExtracting, err)
	}

	var tr transcript.Transcript
	if err := run.stage(ctx, StateTranscribing, func(ctx context.Context) error {
		var err error
		tr, err = o.transcriber.Transcribe(ctx, audioPath, jobWorkDir)
		if err != nil {
			return err
		}
		if len(tr.Segments) == 0 {
			return services.Wrap(services.ErrTranscription, string(StateTranscribing), "transcribe", "no speech detected", nil)
		}
		return nil
	}); err != nil {
		return run.fail(StateTranscribing, err)
	}

	var translated []transcript.TranslatedSegment
	if err := run.stage(ctx, StateTranslating, func(ctx context.Context) error {
		var err error
		translated, err = translate.Segments(ctx, o.translator, tr.Segments, run.target, func(done, total int) {
			observer.OnProgress(StateTranslating, percentOf(done, total), fmt.Sprintf("Translated segment %d of %d", done, total))
		})
		return err
	}); err != nil {
		return run.fail(StateTranslating, err)
	}

	if err := run.stage(ctx, StateWritingSubtitles, func(context.Context) error {
		if err := subtitles.WriteSRT(paths.SubtitlePath, translated); err != nil {
			return services.Wrap(services.ErrTranslation, string(StateWritingSubtitles), "write srt", "subtitle file not written", err)
		}
		return nil
	}); err != nil {
		return run.fail(StateWritingSubtitles, err)
	}

	if err := run.stage(ctx, StateSynthesizing, func(ctx context.Context) error {
		return o.synthesizer.Synthesize(ctx, transcript.JoinTranslated(translated), o.synthesisLanguage(run.target), paths.AudioPath)
	}); err != nil {
		return run.fail(StateSynthesizing, err)
	}

	if err := run.stage(ctx, StateReplacing, func(ctx context.Context) error {
		return o.replacer.Replace(ctx, req.InputPath, paths.AudioPath, paths.VideoPath)
	}); err != nil {
		return run.fail(StateReplacing, err)
	}

	paths.DetectedLanguage = tr.Language
	paths.SegmentCount = len(translated)
	observer.OnState(StateDone)
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("subtitles", paths.SubtitlePath),
		logging.String("audio", paths.AudioPath),
		logging.String("video", paths.VideoPath),
		logging.Int("segments", paths.SegmentCount),
		logging.DurationMS(time.Since(started)),
	)
	return paths, nil
}

func (o *Orchestrator) targetLanguage(req Request) string {
	if target := strings.TrimSpace(req.TargetLanguage); target != "" {
		return target
	}
	return o.cfg.TargetLanguage
}

func (o *Orchestrator) synthesisLanguage(target string) string {
	if lang := strings.TrimSpace(o.cfg.SynthesisLanguage); lang != "" {
		return lang
	}
	return target
}

func (o *Orchestrator) validateInput(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, string(StateIdle), "validate", "input path required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrValidation, string(StateIdle), "validate", "input file does not exist", err)
		}
		return services.Wrap(services.ErrValidation, string(StateIdle), "validate", "input file not readable", err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrValidation, string(StateIdle), "validate", "input is not a regular file", nil)
	}
	if len(o.cfg.AllowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range o.cfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return services.Wrap(services.ErrValidation, string(StateIdle), "validate",
		fmt.Sprintf("unsupported file type %q (allowed: %s)", ext, strings.Join(o.cfg.AllowedExtensions, ", ")), nil)
}

type runState struct {
	o        *Orchestrator
	observer Observer
	logger   *slog.Logger
	target   string
}

func (r *runState) stage(ctx context.Context, state State, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(markerFor(state), string(state), "start", "pipeline canceled", err)
	}
	r.observer.OnState(state)
	r.observer.OnProgress(state, 0, state.Label()+" started")

	stageCtx := services.WithStage(ctx, string(state))
	cancel := func() {}
	if r.o.cfg.StageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(stageCtx, r.o.cfg.StageTimeout)
	}
	defer cancel()

	started := time.Now()
	err := fn(stageCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(markerFor(state), string(state), "timeout",
				fmt.Sprintf("stage exceeded %s", r.o.cfg.StageTimeout), errors.Join(services.ErrTimeout, err))
		}
		if services.KindOf(err) == services.KindUnknown || services.KindOf(err) == services.KindCanceled {
			return services.Wrap(markerFor(state), string(state), "run", state.Label()+" failed", err)
		}
		return err
	}
	r.observer.OnProgress(state, 100, state.Label()+" finished")
	logging.WithContext(stageCtx, r.logger).Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.DurationMS(time.Since(started)),
	)
	return nil
}

func (r *runState) fail(state State, err error) (Result, error) {
	r.observer.OnState(StateFailed)
	r.logger.Error("pipeline failed",
		logging.String(logging.FieldEventType, "pipeline_failed"),
		logging.String(logging.FieldStage, string(state)),
		logging.String(logging.FieldErrorKind, services.KindOf(err)),
		logging.Error(err),
	)
	return Result{}, err
}

func markerFor(state State) error {
	switch state {
	case StateExtracting:
		return services.ErrExtraction
	case StateTranscribing:
		return services.ErrTranscription
	case StateTranslating, StateWritingSubtitles:
		return services.ErrTranslation
	case StateSynthesizing:
		return services.ErrSynthesis
	case StateReplacing:
		return services.ErrReplacement
	default:
		return services.ErrValidation
	}
}

func percentOf(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
