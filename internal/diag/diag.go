// Package diag accumulates severity-tagged diagnostic messages produced
// throughout lexing, parsing, schema building and type checking. Nothing in
// this module ever aborts on a user error; every stage appends to a shared
// accumulator and keeps going.
package diag

import (
	"fmt"

	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	// Info is purely informational and never blocks code generation.
	Info Severity = iota
	// Warning flags a likely mistake that does not block code generation.
	Warning
	// Error flags a problem severe enough that code generation should not proceed.
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported issue with a primary span and any related spans.
type Diagnostic struct {
	Severity     Severity
	Message      string
	File         string
	PrimarySpan  srcmap.Span
	RelatedSpans []RelatedSpan
}

// RelatedSpan names a secondary location relevant to a diagnostic, such as a
// previous definition of a duplicate symbol.
type RelatedSpan struct {
	Span    srcmap.Span
	File    string
	Message string
}

// Bag accumulates diagnostics across a single compilation. It is passed by
// pointer and mutated in place rather than threaded through return values,
// so a deeply nested parse or check can report an error without plumbing
// an (T, error) pair back up through every caller.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty diagnostic accumulator.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf appends an Error-severity diagnostic built from a format string.
func (b *Bag) Errorf(file string, span srcmap.Span, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), File: file, PrimarySpan: span})
}

// Warnf appends a Warning-severity diagnostic built from a format string.
func (b *Bag) Warnf(file string, span srcmap.Span, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), File: file, PrimarySpan: span})
}

// Infof appends an Info-severity diagnostic built from a format string.
func (b *Bag) Infof(file string, span srcmap.Span, format string, args ...any) {
	b.Add(Diagnostic{Severity: Info, Message: fmt.Sprintf(format, args...), File: file, PrimarySpan: span})
}

// All returns every diagnostic recorded so far, in recorded order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Extend appends every diagnostic from other into b, preserving order.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Len returns the number of diagnostics recorded.
func (b *Bag) Len() int { return len(b.items) }
