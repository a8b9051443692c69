package gtts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxChunkLength is the longest text, in characters, sent in one request.
const MaxChunkLength = 100

// punctuation ends a chunk; the mark stays with the preceding text.
const punctuation = "?!？！.,¡()[]¿…‥،;:。，、：\n"

// Tokenize splits text into ordered chunks no longer than max characters.
// Chunks containing only punctuation or whitespace are dropped.
func Tokenize(text string, max int) []string {
	if max <= 0 {
		max = MaxChunkLength
	}
	var chunks []string
	for _, piece := range splitPunctuation(text) {
		for _, part := range minimize(strings.TrimSpace(piece), max) {
			if speakable(part) {
				chunks = append(chunks, part)
			}
		}
	}
	return chunks
}

func splitPunctuation(text string) []string {
	var pieces []string
	start := 0
	for i, r := range text {
		if !strings.ContainsRune(punctuation, r) {
			continue
		}
		// Decimal separators and abbreviations such as "3.5" stay joined.
		if (r == '.' || r == ',') && i+1 < len(text) && !isBoundaryAfter(text[i+1:]) {
			continue
		}
		end := i + utf8.RuneLen(r)
		pieces = append(pieces, text[start:end])
		start = end
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

func isBoundaryAfter(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || strings.ContainsRune(punctuation, r)
}

// minimize cuts text at the last space before max, repeating until every
// part fits. Words longer than max are cut hard.
func minimize(text string, max int) []string {
	var parts []string
	for utf8.RuneCountInString(text) > max {
		runes := []rune(text)
		cut := -1
		for i := max; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = max
		}
		parts = append(parts, strings.TrimSpace(string(runes[:cut])))
		text = strings.TrimSpace(string(runes[cut:]))
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func speakable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
