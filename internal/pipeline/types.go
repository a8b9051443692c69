package pipeline

import (
	"context"

	"vidlingo/internal/transcript"
)

// State is a pipeline position. Processing states double as job statuses.
type State string

const (
	StateIdle             State = "idle"
	StateExtracting       State = "extracting"
	StateTranscribing     State = "transcribing"
	StateTranslating      State = "translating"
	StateWritingSubtitles State = "writing_subtitles"
	StateSynthesizing     State = "synthesizing"
	StateReplacing        State = "replacing"
	StateDone             State = "completed"
	StateFailed           State = "failed"
)

// ProcessingStates lists the working states in execution order.
var ProcessingStates = []State{
	StateExtracting,
	StateTranscribing,
	StateTranslating,
	StateWritingSubtitles,
	StateSynthesizing,
	StateReplacing,
}

// Label returns a human-readable stage name.
func (s State) Label() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateExtracting:
		return "Extracting audio"
	case StateTranscribing:
		return "Transcribing"
	case StateTranslating:
		return "Translating"
	case StateWritingSubtitles:
		return "Writing subtitles"
	case StateSynthesizing:
		return "Synthesizing speech"
	case StateReplacing:
		return "Replacing audio"
	case StateDone:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// Extractor writes the first audio track of a video to a file.
type Extractor interface {
	Extract(ctx context.Context, videoPath, destPath string) error
}

// Transcriber turns speech audio into timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (transcript.Transcript, error)
}

// Synthesizer speaks text into an MP3 file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, destPath string) error
}

// Replacer muxes a video with a new audio track.
type Replacer interface {
	Replace(ctx context.Context, videoPath, audioPath, destPath string) error
}

// Observer receives state transitions and coarse progress.
type Observer interface {
	OnState(state State)
	OnProgress(state State, percent float64, message string)
}

// ObserverFuncs adapts optional callbacks to Observer.
type ObserverFuncs struct {
	State    func(State)
	Progress func(State, float64, string)
}

// OnState calls State when set.
func (o ObserverFuncs) OnState(state State) {
	if o.State != nil {
		o.State(state)
	}
}

// OnProgress calls Progress when set.
func (o ObserverFuncs) OnProgress(state State, percent float64, message string) {
	if o.Progress != nil {
		o.Progress(state, percent, message)
	}
}

// Request identifies one run.
type Request struct {
	// JobID names the work directory. Empty gets a fresh uuid.
	JobID     string
	InputPath string
	// OutputDir receives the artifacts. Empty means the processed directory.
	OutputDir string
	// TargetLanguage overrides the configured target when set.
	TargetLanguage string
}

// Result lists the artifacts of a successful run.
type Result struct {
	SubtitlePath     string `json:"subtitle_path"`
	AudioPath        string `json:"audio_path"`
	VideoPath        string `json:"video_path"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	SegmentCount     int    `json:"segment_count"`
}

// Paths returns the artifact paths in production order.
func (r Result) Paths() []string {
	return []string{r.SubtitlePath, r.AudioPath, r.VideoPath}
}
