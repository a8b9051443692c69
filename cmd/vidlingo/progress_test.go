package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"vidlingo/internal/pipeline"
)

func TestOverallPercent(t *testing.T) {
	total := len(pipeline.ProcessingStates)
	last := pipeline.ProcessingStates[total-1]

	tests := []struct {
		name    string
		state   pipeline.State
		percent float64
		want    int
	}{
		{name: "start", state: pipeline.ProcessingStates[0], percent: 0, want: 0},
		{name: "halfway through second", state: pipeline.ProcessingStates[1], percent: 50, want: int(1.5 / float64(total) * 100)},
		{name: "clamped high", state: last, percent: 250, want: 100},
		{name: "clamped low", state: pipeline.ProcessingStates[0], percent: -10, want: 0},
		{name: "idle", state: pipeline.StateIdle, percent: 80, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overallPercent(tt.state, tt.percent); got != tt.want {
				t.Fatalf("overallPercent(%s, %v) = %d, want %d", tt.state, tt.percent, got, tt.want)
			}
		})
	}
}

func TestStageProgressPlainLines(t *testing.T) {
	var buf bytes.Buffer
	progress := newStageProgress(&buf, false)
	observer := progress.observer()

	observer.OnState(pipeline.StateIdle)
	for _, state := range pipeline.ProcessingStates {
		observer.OnState(state)
		observer.OnState(state)
		observer.OnProgress(state, 50, "working")
	}
	progress.finish(true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(pipeline.ProcessingStates) {
		t.Fatalf("expected one line per stage, got %q", buf.String())
	}
	for i, state := range pipeline.ProcessingStates {
		want := fmt.Sprintf("[%d/%d] %s", i+1, len(pipeline.ProcessingStates), state.Label())
		if lines[i] != want {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}
