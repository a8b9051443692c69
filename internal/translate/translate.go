package translate

import (
	"context"
	"fmt"
	"strings"

	"vidlingo/internal/services"
	"vidlingo/internal/transcript"
)

const stage = "translating"

// AutoDetect asks the backend to detect the source language.
const AutoDetect = "auto"

// Translator renders text from source into target.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Func adapts a function to Translator.
type Func func(ctx context.Context, text, source, target string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f(ctx, text, source, target)
}

// ProgressFunc receives the number of segments translated so far and the total.
type ProgressFunc func(done, total int)

// Segments translates each segment independently from an auto-detected
// source into target, keeping bounds and order. Blank segment text or any
// backend error fails the whole call with ErrTranslation.
func Segments(ctx context.Context, tr Translator, segments []transcript.Segment, target string, progress ProgressFunc) ([]transcript.TranslatedSegment, error) {
	if tr == nil {
		return nil, services.Wrap(services.ErrTranslation, stage, "configure", "no translator configured", nil)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, services.Wrap(services.ErrTranslation, stage, "validate", "target language required", nil)
	}

	out := make([]transcript.TranslatedSegment, 0, len(segments))
	total := len(segments)
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTranslation, stage, "translate", "translation canceled", err)
		}
		if strings.TrimSpace(seg.Text) == "" {
			return nil, services.Wrap(services.ErrTranslation, stage, "validate", fmt.Sprintf("segment %d has no text", i+1), nil)
		}
		translated, err := tr.Translate(ctx, seg.Text, AutoDetect, target)
		if err != nil {
			return nil, services.Wrap(services.ErrTranslation, stage, "translate", fmt.Sprintf("segment %d of %d", i+1, total), err)
		}
		out = append(out, transcript.TranslatedSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(translated),
		})
		if progress != nil {
			progress(i+1, total)
		}
	}
	return out, nil
}
