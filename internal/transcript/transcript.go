// Package transcript holds the timed text types passed between the
// transcription, translation, and subtitle stages.
package transcript

import "strings"

// Segment is one transcribed span of speech. Start and End are seconds from
// the beginning of the audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// TranslatedSegment carries a segment's bounds with its translated text.
type TranslatedSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the transcriber output for one audio file.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// SpeechSeconds sums the durations of all segments.
func (t Transcript) SpeechSeconds() float64 {
	var total float64
	for _, seg := range t.Segments {
		total += seg.Duration()
	}
	return total
}

// Empty reports whether the transcript has no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// JoinSegments joins segment texts with single spaces.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// JoinTranslated joins translated texts with single spaces. The result is
// the narration script handed to speech synthesis.
func JoinTranslated(segments []TranslatedSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}
