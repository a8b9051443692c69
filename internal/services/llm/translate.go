package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vidlingo/internal/language"
)

// TranslationPrompt instructs the model to return a single JSON object.
const TranslationPrompt = `You translate subtitles for a dubbed video.
Translate the user's text into the requested target language. Keep the meaning, tone, and register; do not add notes, quotes, or explanations.
Respond with JSON only, in the form {"translation": "<translated text>"}.`

type translationRequest struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Text           string `json:"text"`
}

// Translate renders text in target using the chat model. A source of "auto"
// or empty asks the model to detect the language.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("llm translate: text required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errors.New("llm translate: target language required")
	}
	source = strings.TrimSpace(source)
	if source == "" || strings.EqualFold(source, "auto") {
		source = "detect automatically"
	} else {
		source = language.DisplayName(source)
	}

	userPrompt, err := json.Marshal(translationRequest{
		SourceLanguage: source,
		TargetLanguage: fmt.Sprintf("%s (%s)", language.DisplayName(target), target),
		Text:           text,
	})
	if err != nil {
		return "", fmt.Errorf("llm translate: encode prompt: %w", err)
	}

	content, err := c.CompleteJSON(ctx, TranslationPrompt, string(userPrompt))
	if err != nil {
		return "", err
	}
	var parsed struct {
		Translation string `json:"translation"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return "", fmt.Errorf("llm translate: parse payload: %w", err)
	}
	translated := strings.TrimSpace(parsed.Translation)
	if translated == "" {
		return "", errors.New("llm translate: empty translation")
	}
	return translated, nil
}
