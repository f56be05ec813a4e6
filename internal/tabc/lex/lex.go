package lex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	// CommentMarker starts a comment that runs to the end of the line.
	CommentMarker = '#'

	maxLineSize = 1024 * 1024
)

// Line is a normalized source line with its 1-based position in the input.
type Line struct {
	Text       string
	Number     int
	Indented   bool
	HasComment bool
}

// Normalize truncates raw at the first comment marker and trims trailing
// whitespace. ok is false when nothing but whitespace remains.
func Normalize(raw string) (text string, ok bool) {
	if index := strings.IndexByte(raw, CommentMarker); index >= 0 {
		raw = raw[:index]
	}

	text = strings.TrimRight(raw, " \t\r\n\v\f")
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	return text, true
}

// NewLine builds a Line from raw text, reporting false for lines that
// normalize to nothing.
func NewLine(raw string, number int) (Line, bool) {
	text, ok := Normalize(raw)
	if !ok {
		return Line{}, false
	}

	return Line{
		Text:       text,
		Number:     number,
		Indented:   strings.HasPrefix(text, "\t"),
		HasComment: strings.IndexByte(raw, CommentMarker) >= 0,
	}, true
}

// Body returns the text with leading tabs removed.
func (l Line) Body() string {
	return strings.TrimLeft(l.Text, "\t")
}

// Scan reads r and returns its non-blank lines in source order.
func Scan(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		if line, ok := NewLine(scanner.Text(), number); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", number+1, err)
	}

	return lines, nil
}
