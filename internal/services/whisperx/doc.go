// Package whisperx runs WhisperX speech recognition through uvx and converts
// its JSON output into transcript segments.
//
// The model size is fixed at "base". Device, VAD method, Hugging Face token,
// and forced language come from Config. Tests inject a command runner that
// writes the JSON WhisperX would have produced.
package whisperx
