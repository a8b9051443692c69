package services

import (
	"context"
	"errors"
	"strings"
)

// Pipeline error kinds. Each stage failure is tagged with exactly one of these
// so callers can tell which stage failed without parsing messages.
var (
	ErrExtraction    = errors.New("extraction error")
	ErrTranscription = errors.New("transcription error")
	ErrTranslation   = errors.New("translation error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrReplacement   = errors.New("replacement error")
)

// Supporting markers for failures outside a single stage, or for refining a
// stage failure's cause.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Kind labels persisted on failed jobs and returned by the API.
const (
	KindExtraction    = "extraction"
	KindTranscription = "transcription"
	KindTranslation   = "translation"
	KindSynthesis     = "synthesis"
	KindReplacement   = "replacement"
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindNotFound      = "not_found"
	KindCanceled      = "canceled"
	KindUnknown       = "unknown"
)

var kindOrder = []struct {
	marker error
	label  string
}{
	{ErrExtraction, KindExtraction},
	{ErrTranscription, KindTranscription},
	{ErrTranslation, KindTranslation},
	{ErrSynthesis, KindSynthesis},
	{ErrReplacement, KindReplacement},
	{ErrValidation, KindValidation},
	{ErrConfiguration, KindConfiguration},
	{ErrNotFound, KindNotFound},
}

// ServiceError carries the marker kind, the failing stage, and the underlying cause.
type ServiceError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(buildDetail(e.Stage, e.Operation, e.Message))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker and the cause to errors.Is and errors.As.
func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker. The marker should be one of the exported sentinels above;
// nil falls back to ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &ServiceError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// KindOf returns the kind label for err. Stage kinds win over supporting
// markers so a translation timeout still reports "translation".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range kindOrder {
		if errors.Is(err, entry.marker) {
			return entry.label
		}
	}
	if IsCanceled(err) {
		return KindCanceled
	}
	return KindUnknown
}

// StageOf returns the stage recorded by the outermost ServiceError, if any.
func StageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// IsCanceled reports whether err stems from context cancellation or a deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
