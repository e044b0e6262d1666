// Package position provides unified source code position tracking for the
// PeopleCode analysis core. Every token, AST node, and diagnostic carries a
// Span so that callers can splice span-addressed text edits.
package position

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position represents a single point in source code.
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// After returns true if this position comes after other.
func (p Position) After(other Position) bool {
	return p.Offset > other.Offset
}

// Span represents a half-open byte range [Start.Offset, End.Offset) of
// source code.
type Span struct {
	Start Position // Starting position (inclusive)
	End   Position // Ending position (exclusive)
}

// IsValid returns true if the span is valid. End may never precede Start.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() && s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span.
func (s Span) String() string {
	if s.Start.Filename != "" {
		filename := filepath.Base(s.Start.Filename)
		if s.Start.Line == s.End.Line {
			return fmt.Sprintf("%s:%d:%d-%d", filename, s.Start.Line, s.Start.Column, s.End.Column)
		}
		return fmt.Sprintf("%s:%d:%d-%d:%d", filename, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
	}

	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains returns true if the span contains the given position.
func (s Span) Contains(pos Position) bool {
	if !s.IsValid() || !pos.IsValid() {
		return false
	}
	return s.Start.Offset <= pos.Offset && pos.Offset < s.End.Offset
}

// ContainsOffset returns true if the byte offset falls inside the span.
func (s Span) ContainsOffset(offset int) bool {
	return s.IsValid() && s.Start.Offset <= offset && offset < s.End.Offset
}

// ContainsSpan returns true if other lies entirely within this span.
// Child node spans are always contained within their parent's span.
func (s Span) ContainsSpan(other Span) bool {
	if !s.IsValid() || !other.IsValid() {
		return false
	}
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Union returns a span that encompasses both this span and other.
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if other.End.After(end) {
		end = other.End
	}

	return Span{Start: start, End: end}
}

// Length returns the length of the span in bytes.
func (s Span) Length() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// Between builds a span from two positions.
func Between(start, end Position) Span {
	return Span{Start: start, End: end}
}

// SourceFile represents a source file with content and position tracking.
type SourceFile struct {
	Filename string   // File path
	Content  string   // Source code content
	Lines    []string // Lines of source code for efficient access
}

// NewSourceFile creates a new source file from content.
func NewSourceFile(filename, content string) *SourceFile {
	lines := strings.Split(content, "\n")
	return &SourceFile{
		Filename: filename,
		Content:  content,
		Lines:    lines,
	}
}

// GetLine returns the specified line (1-based) or empty string if invalid.
func (sf *SourceFile) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(sf.Lines) {
		return ""
	}
	return sf.Lines[lineNum-1]
}

// GetSpanText returns the text covered by the span. This is the round-trip
// contract: for any token or node span, GetSpanText reproduces exactly the
// source text that produced it.
func (sf *SourceFile) GetSpanText(span Span) string {
	if !span.IsValid() {
		return ""
	}

	if span.Start.Offset >= len(sf.Content)+1 || span.End.Offset > len(sf.Content) {
		return ""
	}
	if span.Start.Offset > span.End.Offset {
		return ""
	}

	return sf.Content[span.Start.Offset:span.End.Offset]
}

// PositionFromOffset converts a byte offset to a Position.
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}

	line := 1
	column := 1

	for i := 0; i < offset; i++ {
		if sf.Content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	return Position{
		Filename: sf.Filename,
		Line:     line,
		Column:   column,
		Offset:   offset,
	}
}

// OffsetFromPosition converts a Position to a byte offset, or -1 if the
// position does not exist in the file.
func (sf *SourceFile) OffsetFromPosition(pos Position) int {
	if pos.Line < 1 || pos.Column < 1 {
		return -1
	}

	offset := 0
	currentLine := 1

	for i := 0; i < len(sf.Content) && currentLine < pos.Line; i++ {
		if sf.Content[i] == '\n' {
			currentLine++
		}
		offset++
	}

	offset += pos.Column - 1

	if offset > len(sf.Content) {
		return -1
	}

	return offset
}
