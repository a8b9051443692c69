package subtitles

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidlingo/internal/transcript"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{61.5, "00:01:01,500"},
		{3661.999, "01:01:01,999"},
		{0.0009, "00:00:00,000"},
		{59.9999, "00:00:59,999"},
		{-3, "00:00:00,000"},
		{360000, "100:00:00,000"},
		{math.NaN(), "00:00:00,000"},
		{math.Inf(1), "00:00:00,000"},
		{math.Inf(-1), "00:00:00,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("01:01:01,999")
	if err != nil {
		t.Fatalf("ParseTimestamp returned error: %v", err)
	}
	if FormatTimestamp(got) != "01:01:01,999" {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if v, err := ParseTimestamp("00:00:01.250"); err != nil || v != 1.25 {
		t.Fatalf("expected period separator accepted, got %v err=%v", v, err)
	}
	for _, bad := range []string{"", "1:2", "00:61:00,000", "aa:bb:cc,ddd"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestWriteSRTFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie_translated.srt")
	segments := []transcript.TranslatedSegment{
		{Start: 0, End: 1.5, Text: "Bonjour"},
		{Start: 61.5, End: 63, Text: "<i>Salut</i> & bienvenue"},
	}

	if err := WriteSRT(path, segments); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nBonjour\n\n" +
		"2\n00:01:01,500 --> 00:01:03,000\n<i>Salut</i> & bienvenue\n\n"
	if string(data) != want {
		t.Fatalf("unexpected srt content:\n%q\nwant:\n%q", data, want)
	}
}

func TestWriteSRTOverwritesAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	segments := make([]transcript.TranslatedSegment, 5)
	for i := range segments {
		segments[i] = transcript.TranslatedSegment{Start: float64(i), End: float64(i) + 0.75, Text: strings.Repeat("x", i+1)}
	}
	if err := WriteSRT(path, segments); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	cues, err := ParseSRT(file)
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(cues) != len(segments) {
		t.Fatalf("expected %d cues, got %d", len(segments), len(cues))
	}
	for i, cue := range cues {
		if cue.Index != i+1 || cue.Text != segments[i].Text || cue.Start != segments[i].Start || cue.End != segments[i].End {
			t.Fatalf("cue %d mismatch: %+v vs %+v", i, cue, segments[i])
		}
	}
	if issues := Validate(cues); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestWriteSRTEmptyProducesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.srt")
	if err := WriteSRT(path, nil); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", info.Size())
	}
}

func TestParseSRTHandlesCRLFAndMultiline(t *testing.T) {
	input := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nline one\r\nline two\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nnext\r\n"
	cues, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "line one\nline two" {
		t.Fatalf("unexpected multiline text %q", cues[0].Text)
	}
}

func TestParseSRTRejectsBadTiming(t *testing.T) {
	if _, err := ParseSRT(strings.NewReader("1\nnot a timing line\ntext\n")); err == nil {
		t.Fatal("expected error for malformed timing line")
	}
}

func TestValidateReportsIssues(t *testing.T) {
	issues := Validate([]Cue{{Index: 1, Start: 5, End: 4}, {Index: 3, Start: 1, End: 2}})
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", issues)
	}
	if got := Validate(nil); len(got) != 1 || got[0] != "empty_subtitle_file" {
		t.Fatalf("unexpected empty issues %v", got)
	}
}
