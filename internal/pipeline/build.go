package pipeline

import (
	"log/slog"
	"time"

	"vidlingo/internal/config"
	"vidlingo/internal/media/audio"
	"vidlingo/internal/services/gtts"
	"vidlingo/internal/services/whisperx"
	"vidlingo/internal/translate"
)

// ConfigFromApp derives orchestrator settings from the application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		ProcessedDir:      cfg.Paths.ProcessedDir,
		WorkDir:           cfg.Paths.WorkDir,
		TargetLanguage:    cfg.Translation.TargetLanguage,
		SynthesisLanguage: cfg.SynthesisLanguage(),
		AllowedExtensions: append([]string(nil), cfg.Video.AllowedExtensions...),
		KeepIntermediates: cfg.Workflow.KeepIntermediates,
		StageTimeout:      time.Duration(cfg.Workflow.StageTimeout) * time.Second,
	}
}

// Build wires the production collaborators: ffmpeg for extraction and
// replacement, WhisperX for transcription, the configured translation
// backend, and the TTS endpoint.
func Build(cfg *config.Config, pcfg Config, logger *slog.Logger) (*Orchestrator, error) {
	translator, err := translate.New(cfg)
	if err != nil {
		return nil, err
	}
	extractor := audio.NewExtractor(cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger)
	transcriber := whisperx.NewService(whisperx.Config{
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HuggingFaceToken,
		Language:    cfg.Transcription.Language,
		CacheDir:    cfg.Transcription.CacheDir,
	}, logger)
	synthesizer := gtts.NewClient(gtts.Config{
		BaseURL:        cfg.Synthesis.BaseURL,
		TimeoutSeconds: cfg.Synthesis.TimeoutSeconds,
	})
	replacer := audio.NewReplacer(cfg.FFmpegBinary(), cfg.Video.VideoCodec, cfg.Video.AudioCodec, logger)
	return NewOrchestrator(pcfg, extractor, transcriber, translator, synthesizer, replacer, logger)
}
