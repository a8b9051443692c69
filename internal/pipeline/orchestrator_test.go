package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"vidlingo/internal/logging"
	"vidlingo/internal/media/audio"
	"vidlingo/internal/services"
	"vidlingo/internal/subtitles"
	"vidlingo/internal/transcript"
	"vidlingo/internal/translate"
)

type fakeExtractor struct {
	mu    sync.Mutex
	dests []string
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _, dest string) error {
	f.mu.Lock()
	f.dests = append(f.dests, dest)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("RIFF"), 0o644)
}

type fakeTranscriber struct {
	result transcript.Transcript
	block  bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, _ string) (transcript.Transcript, error) {
	if f.block {
		<-ctx.Done()
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, "transcribing", "whisperx", "transcription canceled", ctx.Err())
	}
	if _, err := os.Stat(audioPath); err != nil {
		return transcript.Transcript{}, err
	}
	return f.result, nil
}

type fakeSynthesizer struct {
	mu   sync.Mutex
	text string
	lang string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, lang, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.lang = lang
	return os.WriteFile(dest, []byte("ID3"), 0o644)
}

type fakeReplacer struct {
	mu    sync.Mutex
	audio string
}

func (f *fakeReplacer) Replace(_ context.Context, _, audioPath, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audio = audioPath
	return os.WriteFile(dest, []byte("mp4"), 0o644)
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) OnState(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recorder) OnProgress(State, float64, string) {}

func (r *recorder) joined() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts := make([]string, len(r.states))
	for i, s := range r.states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

var upper = translate.Func(func(_ context.Context, text, _, _ string) (string, error) {
	return strings.ToUpper(text), nil
})

func twoSegments() transcript.Transcript {
	return transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{
			{Start: 0, End: 1.5, Text: "hello"},
			{Start: 1.5, End: 61.5, Text: "world"},
		},
	}
}

type harness struct {
	cfg         Config
	extractor   *fakeExtractor
	transcriber *fakeTranscriber
	synth       *fakeSynthesizer
	replacer    *fakeReplacer
	input       string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "clip.mp4")
	if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return &harness{
		cfg: Config{
			ProcessedDir:      filepath.Join(root, "processed"),
			WorkDir:           filepath.Join(root, "work"),
			TargetLanguage:    "fr",
			AllowedExtensions: []string{".mp4"},
		},
		extractor:   &fakeExtractor{},
		transcriber: &fakeTranscriber{result: twoSegments()},
		synth:       &fakeSynthesizer{},
		replacer:    &fakeReplacer{},
		input:       input,
	}
}

func (h *harness) orchestrator(t *testing.T, extractor Extractor) *Orchestrator {
	t.Helper()
	if extractor == nil {
		extractor = h.extractor
	}
	o, err := NewOrchestrator(h.cfg, extractor, h.transcriber, upper, h.synth, h.replacer, logging.NewNop())
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}
	return o
}

func TestRunProducesArtifacts(t *testing.T) {
	h := newHarness(t)
	rec := &recorder{}
	result, err := h.orchestrator(t, nil).Run(context.Background(), Request{JobID: "job-1", InputPath: h.input}, rec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantStates := "extracting,transcribing,translating,writing_subtitles,synthesizing,replacing,completed"
	if got := rec.joined(); got != wantStates {
		t.Fatalf("states = %s, want %s", got, wantStates)
	}
	want := OutputPaths(h.input, h.cfg.ProcessedDir)
	if result.SubtitlePath != want.SubtitlePath || result.AudioPath != want.AudioPath || result.VideoPath != want.VideoPath {
		t.Fatalf("unexpected result %+v", result)
	}
	if filepath.Base(result.VideoPath) != "clip_translated.mp4" {
		t.Fatalf("unexpected video name %s", result.VideoPath)
	}
	for _, path := range result.Paths() {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty artifact %s: %v", path, err)
		}
	}

	file, err := os.Open(result.SubtitlePath)
	if err != nil {
		t.Fatalf("open srt: %v", err)
	}
	defer file.Close()
	cues, err := subtitles.ParseSRT(file)
	if err != nil {
		t.Fatalf("parse srt: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "HELLO" || cues[1].Index != 2 {
		t.Fatalf("unexpected cues %+v", cues)
	}

	if h.synth.text != "HELLO WORLD" || h.synth.lang != "fr" {
		t.Fatalf("unexpected synthesis input %q (%s)", h.synth.text, h.synth.lang)
	}
	if h.replacer.audio != result.AudioPath {
		t.Fatalf("replacer used %s", h.replacer.audio)
	}
	if result.DetectedLanguage != "en" || result.SegmentCount != 2 {
		t.Fatalf("unexpected metadata %+v", result)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.WorkDir, "job-1")); !os.IsNotExist(err) {
		t.Fatalf("expected work dir removed, stat err=%v", err)
	}
}

func TestRunUsesPerJobIntermediatePaths(t *testing.T) {
	h := newHarness(t)
	h.cfg.KeepIntermediates = true
	o := h.orchestrator(t, nil)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			outDir := filepath.Join(h.cfg.ProcessedDir, id)
			if _, err := o.Run(context.Background(), Request{JobID: id, InputPath: h.input, OutputDir: outDir}, nil); err != nil {
				t.Errorf("Run(%s) returned error: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	if len(h.extractor.dests) != 2 || h.extractor.dests[0] == h.extractor.dests[1] {
		t.Fatalf("expected distinct intermediate paths, got %v", h.extractor.dests)
	}
	for _, id := range []string{"a", "b"} {
		kept := filepath.Join(h.cfg.WorkDir, id, ExtractedAudioName)
		if _, err := os.Stat(kept); err != nil {
			t.Fatalf("expected kept intermediate %s: %v", kept, err)
		}
	}
}

func TestRunGeneratesJobIDWhenMissing(t *testing.T) {
	h := newHarness(t)
	if _, err := h.orchestrator(t, nil).Run(context.Background(), Request{InputPath: h.input}, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	dest := h.extractor.dests[0]
	jobDir := filepath.Base(filepath.Dir(dest))
	if len(jobDir) != 36 || filepath.Dir(filepath.Dir(dest)) != h.cfg.WorkDir {
		t.Fatalf("expected uuid work dir under %s, got %s", h.cfg.WorkDir, dest)
	}
}

func TestRunAudioLessVideoLeavesNoArtifacts(t *testing.T) {
	h := newHarness(t)
	ffmpegCalled := false
	extractor := audio.NewExtractor("ffmpeg", "ffprobe", logging.NewNop()).
		WithInspectRunner(func(context.Context, string, ...string) ([]byte, error) {
			return []byte(`{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}],"format":{"duration":"4.0"}}`), nil
		}).
		WithCommandRunner(func(context.Context, string, ...string) error {
			ffmpegCalled = true
			return nil
		})

	rec := &recorder{}
	_, err := h.orchestrator(t, extractor).Run(context.Background(), Request{JobID: "silent", InputPath: h.input}, rec)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if services.KindOf(err) != services.KindExtraction {
		t.Fatalf("unexpected kind %s", services.KindOf(err))
	}
	if ffmpegCalled {
		t.Fatal("ffmpeg should not run for audio-less input")
	}
	if got := rec.joined(); got != "extracting,failed" {
		t.Fatalf("unexpected states %s", got)
	}
	for _, path := range OutputPaths(h.input, h.cfg.ProcessedDir).Paths() {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected no artifact at %s, stat err=%v", path, err)
		}
	}
}

func TestRunEmptyTranscriptFailsTranscription(t *testing.T) {
	h := newHarness(t)
	h.transcriber.result = transcript.Transcript{Language: "en"}
	result, err := h.orchestrator(t, nil).Run(context.Background(), Request{InputPath: h.input}, nil)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no speech detected") {
		t.Fatalf("unexpected message %v", err)
	}
	if result.SubtitlePath != "" {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestRunTranslationFailureKeepsEarlierState(t *testing.T) {
	h := newHarness(t)
	failing := translate.Func(func(context.Context, string, string, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	o, err := NewOrchestrator(h.cfg, h.extractor, h.transcriber, failing, h.synth, h.replacer, logging.NewNop())
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}
	_, err = o.Run(context.Background(), Request{InputPath: h.input}, nil)
	if services.KindOf(err) != services.KindTranslation {
		t.Fatalf("expected translation kind, got %v", err)
	}
	if h.synth.text != "" {
		t.Fatal("synthesis should not run after a translation failure")
	}
}

func TestRunValidatesInput(t *testing.T) {
	h := newHarness(t)
	wrongExt := filepath.Join(filepath.Dir(h.input), "clip.avi")
	if err := os.WriteFile(wrongExt, []byte("video"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing", filepath.Join(filepath.Dir(h.input), "nope.mp4")},
		{"directory", filepath.Dir(h.input)},
		{"extension", wrongExt},
	}
	o := h.orchestrator(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Run(context.Background(), Request{InputPath: tt.input}, nil)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(h.extractor.dests) != 0 {
		t.Fatal("extractor should not run for invalid input")
	}
}

func TestRunStageTimeout(t *testing.T) {
	h := newHarness(t)
	h.cfg.StageTimeout = 20 * time.Millisecond
	h.transcriber.block = true
	_, err := h.orchestrator(t, nil).Run(context.Background(), Request{InputPath: h.input}, nil)
	if !errors.Is(err, services.ErrTranscription) || !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected transcription timeout, got %v", err)
	}
}

func TestRunHonoursCanceledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.orchestrator(t, nil).Run(ctx, Request{InputPath: h.input}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if len(h.extractor.dests) != 0 {
		t.Fatal("no stage should run on a canceled context")
	}
}

func TestRunTargetOverride(t *testing.T) {
	h := newHarness(t)
	var target string
	tr := translate.Func(func(_ context.Context, text, _, tgt string) (string, error) {
		target = tgt
		return text, nil
	})
	o, err := NewOrchestrator(h.cfg, h.extractor, h.transcriber, tr, h.synth, h.replacer, logging.NewNop())
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}
	if _, err := o.Run(context.Background(), Request{InputPath: h.input, TargetLanguage: "de"}, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if target != "de" || h.synth.lang != "de" {
		t.Fatalf("expected de target and voice, got %s/%s", target, h.synth.lang)
	}
}

func TestNewOrchestratorRequiresCollaborators(t *testing.T) {
	_, err := NewOrchestrator(Config{}, nil, nil, upper, nil, nil, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "extractor, transcriber, synthesizer, replacer") {
		t.Fatalf("unexpected message %v", err)
	}
}
