// Package parser turns a token stream into a syntax tree using recursive
// descent with Pratt-style precedence climbing for expressions. It never
// aborts: unexpected input produces an ast.Invalid node or a skipped
// statement plus a diagnostic, and parsing continues from the next
// statement boundary.
package parser

import (
	"fmt"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/lexer"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// state is the mutable cursor over one file's token stream. It is never
// shared across files; each call to Parse constructs a fresh one so NodeIDs
// and parameter indices stay meaningful per compilation unit.
type state struct {
	file   string
	src    string
	toks   []lexer.Token
	pos    int
	bag    *diag.Bag
	ids    *ast.IDGen
	params *paramTable
}

func newState(file, src string, toks []lexer.Token, bag *diag.Bag) *state {
	return &state{
		file:   file,
		src:    src,
		toks:   toks,
		bag:    bag,
		ids:    &ast.IDGen{},
		params: newParamTable(),
	}
}

func (s *state) peek() lexer.Token {
	if s.pos >= len(s.toks) {
		return s.toks[len(s.toks)-1] // EOF sentinel
	}
	return s.toks[s.pos]
}

func (s *state) peek2() lexer.Token {
	if s.pos+1 >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+1]
}

func (s *state) peekN(n int) lexer.Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+n]
}

func (s *state) atEOF() bool {
	return s.peek().Kind == lexer.KindEOF
}

// take consumes and returns the current token unconditionally.
func (s *state) take() lexer.Token {
	t := s.peek()
	if s.pos < len(s.toks) {
		s.pos++
	}
	return t
}

// takeIfKeyword consumes and returns (token, true) if the current token is
// the given keyword.
func (s *state) takeIfKeyword(word string) (lexer.Token, bool) {
	if s.peek().IsKeyword(word) {
		return s.take(), true
	}
	return lexer.Token{}, false
}

// takeIfPunct consumes and returns (token, true) if the current token is the
// given punctuation spelling.
func (s *state) takeIfPunct(text string) (lexer.Token, bool) {
	if s.peek().IsPunct(text) {
		return s.take(), true
	}
	return lexer.Token{}, false
}

// consumeExpectedKeyword consumes the given keyword or emits a diagnostic
// and returns ok=false. On a mismatch no token is consumed and no
// resynchronization happens here; Parse skips to the next `;` only when a
// statement ends somewhere other than `;` or end of input.
func (s *state) consumeExpectedKeyword(word string) (lexer.Token, bool) {
	if t, ok := s.takeIfKeyword(word); ok {
		return t, true
	}
	s.errf("expected %s, found %s", word, s.describe(s.peek()))
	return lexer.Token{}, false
}

// consumeExpectedPunct consumes the given punctuation or emits a diagnostic
// and returns ok=false, consuming nothing on a mismatch (see
// consumeExpectedKeyword).
func (s *state) consumeExpectedPunct(text string) (lexer.Token, bool) {
	if t, ok := s.takeIfPunct(text); ok {
		return t, true
	}
	s.errf("expected %q, found %s", text, s.describe(s.peek()))
	return lexer.Token{}, false
}

func (s *state) consumeExpectedIdent() (lexer.Token, bool) {
	t := s.peek()
	if t.Kind == lexer.KindIdent || t.Kind == lexer.KindKeyword {
		return s.take(), true
	}
	s.errf("expected identifier, found %s", s.describe(t))
	return lexer.Token{}, false
}

func (s *state) describe(t lexer.Token) string {
	if t.Kind == lexer.KindEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}

func (s *state) errf(format string, args ...any) {
	s.bag.Errorf(s.file, s.peek().Span, format, args...)
}

func (s *state) errfAt(span srcmap.Span, format string, args ...any) {
	s.bag.Errorf(s.file, span, format, args...)
}

// synchronize advances past tokens until the next `;` (consumed) or EOF,
// the standard statement-boundary recovery point.
func (s *state) synchronize() {
	for !s.atEOF() {
		if _, ok := s.takeIfPunct(";"); ok {
			return
		}
		s.take()
	}
}

// spanFrom returns the span covering [start token's position, current
// position), used to stamp a just-finished node.
func (s *state) spanFrom(startPos int) srcmap.Span {
	startTok := s.toks[startPos]
	var end srcmap.Pos
	if s.pos == 0 {
		end = startTok.Span.End
	} else {
		end = s.toks[s.pos-1].Span.End
	}
	return srcmap.Span{Start: startTok.Span.Start, End: end}
}

func (s *state) nextID() ast.NodeID {
	return s.ids.Next()
}
