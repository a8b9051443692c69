package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vidlingo/internal/fileutil"
	"vidlingo/internal/transcript"
)

// Cue is one parsed SRT entry.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Render formats segments as SRT text. Entries are numbered from 1 in input
// order and text is written verbatim.
func Render(segments []transcript.TranslatedSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(seg.End))
		b.WriteByte('\n')
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteSRT writes segments to path, replacing any existing file atomically.
func WriteSRT(path string, segments []transcript.TranslatedSegment) error {
	if err := fileutil.WriteAtomic(path, []byte(Render(segments)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// ParseSRT reads cues from r. Blocks are separated by blank lines; CRLF line
// endings are accepted. Text lines within a cue are joined with "\n".
func ParseSRT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues  []Cue
		block []string
		line  int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return fmt.Errorf("srt block ending line %d: %w", line, err)
		}
		cues = append(cues, cue)
		return nil
	}
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseBlock(lines []string) (Cue, error) {
	if len(lines) < 2 {
		return Cue{}, fmt.Errorf("expected index and timing lines")
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Cue{}, fmt.Errorf("invalid cue index %q", lines[0])
	}
	parts := strings.Split(lines[1], "-->")
	if len(parts) != 2 {
		return Cue{}, fmt.Errorf("invalid timing line %q", lines[1])
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return Cue{}, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return Cue{}, err
	}
	return Cue{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], "\n"),
	}, nil
}

// Validate returns a list of format issues in parsed cues; an empty slice
// means the file looks sound.
func Validate(cues []Cue) []string {
	var issues []string
	if len(cues) == 0 {
		return append(issues, "empty_subtitle_file")
	}
	for i, cue := range cues {
		if cue.Index != i+1 {
			issues = append(issues, fmt.Sprintf("cue %d: index %d out of sequence", i+1, cue.Index))
		}
		if cue.End < cue.Start {
			issues = append(issues, fmt.Sprintf("cue %d: ends before it starts", i+1))
		}
		if i > 0 && cue.Start < cues[i-1].Start {
			issues = append(issues, fmt.Sprintf("cue %d: starts before previous cue", i+1))
		}
	}
	return issues
}
