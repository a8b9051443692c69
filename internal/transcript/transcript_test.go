package transcript

import "testing"

func TestJoinTranslatedUsesSingleSpaces(t *testing.T) {
	segments := []TranslatedSegment{
		{Start: 0, End: 1, Text: "Bonjour"},
		{Start: 1, End: 2, Text: "le monde"},
	}
	if got := JoinTranslated(segments); got != "Bonjour le monde" {
		t.Fatalf("JoinTranslated = %q", got)
	}
	if got := JoinTranslated(nil); got != "" {
		t.Fatalf("expected empty join, got %q", got)
	}
}

func TestSegmentDuration(t *testing.T) {
	if d := (Segment{Start: 1.5, End: 4}).Duration(); d != 2.5 {
		t.Fatalf("unexpected duration %v", d)
	}
	if d := (Segment{Start: 4, End: 1}).Duration(); d != 0 {
		t.Fatalf("expected inverted segment to clamp, got %v", d)
	}
}

func TestSpeechSeconds(t *testing.T) {
	tr := Transcript{Segments: []Segment{
		{Start: 0, End: 1.5},
		{Start: 2, End: 3},
		{Start: 5, End: 4},
	}}
	if got := tr.SpeechSeconds(); got != 2.5 {
		t.Fatalf("SpeechSeconds = %v, want 2.5", got)
	}
	if got := (Transcript{}).SpeechSeconds(); got != 0 {
		t.Fatalf("expected zero for empty transcript, got %v", got)
	}
}

func TestJoinSegments(t *testing.T) {
	tr := Transcript{Segments: []Segment{{Text: "Hello"}, {Text: "world"}}}
	if tr.Empty() {
		t.Fatal("expected non-empty transcript")
	}
	if got := JoinSegments(tr.Segments); got != "Hello world" {
		t.Fatalf("JoinSegments = %q", got)
	}
}
