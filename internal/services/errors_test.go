package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"vidlingo/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrReplacement, "replacing", "ffmpeg", "mux failed", base)
	if !errors.Is(err, services.ErrReplacement) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"replacement error", "replacing", "ffmpeg", "mux failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"extraction", services.Wrap(services.ErrExtraction, "extracting", "inspect", "no audio stream", nil), services.KindExtraction},
		{"transcription", services.Wrap(services.ErrTranscription, "transcribing", "whisperx", "", errors.New("exit 1")), services.KindTranscription},
		{"translation wins over timeout", services.Wrap(services.ErrTranslation, "translating", "request", "", services.Wrap(services.ErrTimeout, "", "", "slow", nil)), services.KindTranslation},
		{"synthesis", fmt.Errorf("outer: %w", services.Wrap(services.ErrSynthesis, "synthesizing", "", "empty", nil)), services.KindSynthesis},
		{"replacement", services.Wrap(services.ErrReplacement, "replacing", "", "", nil), services.KindReplacement},
		{"validation", services.Wrap(services.ErrValidation, "", "", "bad ext", nil), services.KindValidation},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), services.KindCanceled},
		{"unknown", errors.New("plain"), services.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageOf(t *testing.T) {
	err := fmt.Errorf("job failed: %w", services.Wrap(services.ErrSynthesis, "synthesizing", "tts", "", nil))
	if got := services.StageOf(err); got != "synthesizing" {
		t.Fatalf("StageOf = %q", got)
	}
	if got := services.StageOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty stage, got %q", got)
	}
}
