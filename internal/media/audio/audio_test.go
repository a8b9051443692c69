package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidlingo/internal/logging"
	"vidlingo/internal/services"
)

const ffprobeWithAudio = `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","codec_name":"aac","channels":2}],"format":{"duration":"12.0"}}`
const ffprobeTaggedAudio = `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","codec_name":"opus","channels":6,"tags":{"language":"ENG"}}],"format":{"duration":"30.5","size":"2048"}}`
const ffprobeVideoOnly = `{"streams":[{"index":0,"codec_type":"video"}],"format":{"duration":"12.0"}}`

func ffprobeReturning(payload string) func(context.Context, string, ...string) ([]byte, error) {
	return func(context.Context, string, ...string) ([]byte, error) { return []byte(payload), nil }
}

// fakeFFmpeg writes content to the last argv element, as ffmpeg would.
func fakeFFmpeg(calls *[][]string, content string) CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, append([]string{name}, args...))
		return os.WriteFile(args[len(args)-1], []byte(content), 0o644)
	}
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractArgs(t *testing.T) {
	got := strings.Join(ExtractArgs("in.mp4", "out.wav"), " ")
	want := "-y -hide_banner -loglevel error -i in.mp4 -map 0:a:0 -vn -sn -dn -c:a pcm_s16le out.wav"
	if got != want {
		t.Fatalf("ExtractArgs = %q, want %q", got, want)
	}
	for _, arg := range ExtractArgs("in.mp4", "out.wav") {
		if arg == "-ar" || arg == "-ac" {
			t.Fatalf("ExtractArgs resamples the source with %s", arg)
		}
	}
}

func TestReplaceArgs(t *testing.T) {
	tests := []struct {
		name       string
		videoCodec string
		audioCodec string
		want       string
	}{
		{"defaults", "", "", "-y -hide_banner -loglevel error -i v.mp4 -i a.mp3 -map 0:v:0 -map 1:a:0 -c:v libx264 -c:a aac out.mp4"},
		{"custom", "libx265", "libopus", "-y -hide_banner -loglevel error -i v.mp4 -i a.mp3 -map 0:v:0 -map 1:a:0 -c:v libx265 -c:a libopus out.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(ReplaceArgs("v.mp4", "a.mp3", "out.mp4", tt.videoCodec, tt.audioCodec), " ")
			if got != tt.want {
				t.Fatalf("ReplaceArgs = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "-shortest") {
				t.Fatal("unexpected -shortest")
			}
		})
	}
}

func TestExtractWritesDestination(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "clip.mp4")
	dest := filepath.Join(dir, "work", "job", "extracted_audio.wav")

	var calls [][]string
	extractor := NewExtractor("ffmpeg-test", "ffprobe-test", logging.NewNop()).
		WithInspectRunner(ffprobeReturning(ffprobeWithAudio)).
		WithCommandRunner(fakeFFmpeg(&calls, "RIFF"))

	if err := extractor.Extract(context.Background(), video, dest); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(calls) != 1 || calls[0][0] != "ffmpeg-test" {
		t.Fatalf("unexpected ffmpeg calls %v", calls)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected destination written: %v", err)
	}
}

func TestExtractLogsSourceDetails(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "clip.mkv")
	dest := filepath.Join(dir, "out.wav")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var calls [][]string
	extractor := NewExtractor("", "", logger).
		WithInspectRunner(ffprobeReturning(ffprobeTaggedAudio)).
		WithCommandRunner(fakeFFmpeg(&calls, "RIFF"))
	if err := extractor.Extract(context.Background(), video, dest); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"codec":         "opus",
		"channels":      float64(6),
		"language":      "eng",
		"video_streams": float64(1),
		"size_bytes":    float64(2048),
	}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("log %s = %v, want %v (entry %v)", key, entry[key], value, entry)
		}
	}
}

func TestExtractFailsWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "silent.mp4")
	dest := filepath.Join(dir, "extracted_audio.wav")

	var calls [][]string
	extractor := NewExtractor("", "", logging.NewNop()).
		WithInspectRunner(ffprobeReturning(ffprobeVideoOnly)).
		WithCommandRunner(fakeFFmpeg(&calls, "RIFF"))

	err := extractor.Extract(context.Background(), video, dest)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("ffmpeg should not run without audio, got %v", calls)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected no destination file, stat err=%v", err)
	}
}

func TestExtractFailureCases(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "clip.mp4")

	tests := []struct {
		name    string
		input   string
		inspect func(context.Context, string, ...string) ([]byte, error)
		run     CommandRunner
	}{
		{
			name:    "missing input",
			input:   filepath.Join(dir, "missing.mp4"),
			inspect: ffprobeReturning(ffprobeWithAudio),
		},
		{
			name:    "unreadable container",
			input:   video,
			inspect: func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("invalid data") },
		},
		{
			name:    "ffmpeg failure removes partial",
			input:   video,
			inspect: ffprobeReturning(ffprobeWithAudio),
			run: func(_ context.Context, _ string, args ...string) error {
				_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
				return errors.New("exit status 1")
			},
		},
		{
			name:    "empty output",
			input:   video,
			inspect: ffprobeReturning(ffprobeWithAudio),
			run: func(_ context.Context, _ string, args ...string) error {
				return os.WriteFile(args[len(args)-1], nil, 0o644)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "extracted_audio.wav")
			extractor := NewExtractor("", "", logging.NewNop()).WithInspectRunner(tt.inspect)
			if tt.run != nil {
				extractor.WithCommandRunner(tt.run)
			} else {
				extractor.WithCommandRunner(func(context.Context, string, ...string) error {
					t.Fatal("ffmpeg should not run")
					return nil
				})
			}
			err := extractor.Extract(context.Background(), tt.input, dest)
			if !errors.Is(err, services.ErrExtraction) {
				t.Fatalf("expected extraction error, got %v", err)
			}
			if services.KindOf(err) != services.KindExtraction {
				t.Fatalf("unexpected kind %q", services.KindOf(err))
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Fatalf("expected no destination file, stat err=%v", statErr)
			}
		})
	}
}

func TestReplaceWritesDestination(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "clip.mp4")
	narration := writeInput(t, dir, "clip_translated.mp3")
	dest := filepath.Join(dir, "out", "clip_translated.mp4")

	var calls [][]string
	replacer := NewReplacer("", "libx264", "aac", logging.NewNop()).WithCommandRunner(fakeFFmpeg(&calls, "mp4"))
	if err := replacer.Replace(context.Background(), video, narration, dest); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if len(calls) != 1 || calls[0][0] != "ffmpeg" {
		t.Fatalf("unexpected calls %v", calls)
	}
	if calls[0][len(calls[0])-1] != dest {
		t.Fatalf("expected dest as final argument, got %v", calls[0])
	}
}

func TestReplaceFailures(t *testing.T) {
	dir := t.TempDir()
	video := writeInput(t, dir, "clip.mp4")
	dest := filepath.Join(dir, "clip_translated.mp4")

	replacer := NewReplacer("", "", "", logging.NewNop()).WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	if err := replacer.Replace(context.Background(), video, filepath.Join(dir, "missing.mp3"), dest); !errors.Is(err, services.ErrReplacement) {
		t.Fatalf("expected replacement error for missing audio, got %v", err)
	}

	narration := writeInput(t, dir, "clip_translated.mp3")
	err := replacer.Replace(context.Background(), video, narration, dest)
	if !errors.Is(err, services.ErrReplacement) || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected replacement/external tool error, got %v", err)
	}
}
