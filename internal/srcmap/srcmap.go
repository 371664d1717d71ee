// Package srcmap converts byte offsets within a source string into
// (line, column) positions and provides span arithmetic over those offsets.
package srcmap

import "fmt"

// Pos is a byte offset into a source string. Offsets are 0-based.
type Pos int

// Span is a half-open byte range [Start, End) into a source string.
type Span struct {
	Start Pos
	End   Pos
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return int(s.End - s.Start)
}

// Cover returns the smallest span that contains both s and other.
func (s Span) Cover(other Span) Span {
	if other == (Span{}) {
		return s
	}
	if s == (Span{}) {
		return other
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Position is a human-facing (line, column) pair, both 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Map indexes the newline offsets of a source string so byte offsets can be
// translated to line/column positions without rescanning the source.
type Map struct {
	File        string
	src         string
	lineOffsets []Pos
}

// New builds a Map over the given source text.
func New(file, src string) *Map {
	offsets := make([]Pos, 1, len(src)/40+2)
	offsets[0] = 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			offsets = append(offsets, Pos(i+1))
		}
	}
	return &Map{File: file, src: src, lineOffsets: offsets}
}

// Position translates a byte offset into a 1-based line/column pair.
func (m *Map) Position(p Pos) Position {
	if p < 0 {
		p = 0
	}
	if int(p) > len(m.src) {
		p = Pos(len(m.src))
	}
	// binary search for the last line offset <= p
	lo, hi := 0, len(m.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.lineOffsets[mid] <= p {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo + 1
	col := int(p-m.lineOffsets[lo]) + 1
	return Position{Line: line, Column: col}
}

// Text returns the substring covered by a span.
func (m *Map) Text(s Span) string {
	start, end := int(s.Start), int(s.End)
	if start < 0 {
		start = 0
	}
	if end > len(m.src) {
		end = len(m.src)
	}
	if start > end {
		return ""
	}
	return m.src[start:end]
}

// Source returns the full source text the map was built from.
func (m *Map) Source() string { return m.src }
