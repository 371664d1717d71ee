package compiler

import (
	"strings"

	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/lexer"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// sanitize re-tokenizes src and rejoins the original source slice of every
// token, writing a single space only where the source had whitespace or a
// comment between two tokens, so comments are stripped and whitespace runs
// are normalized
// while preserving parameter placeholders. Using the original byte slices
// (rather than each token's normalized Text) keeps
// string-literal quoting, bind-parameter sigils and numeric spelling exactly
// as written; only inter-token whitespace and comment trivia are discarded.
// Diagnostics from the re-scan are discarded: sanitize only ever runs on
// source that has already lexed successfully once during Compile.
func sanitize(file, src string) string {
	bag := diag.NewBag()
	toks := lexer.Scan(file, src, bag)
	m := srcmap.New(file, src)
	var b strings.Builder
	var prevEnd srcmap.Pos
	for i, t := range toks {
		if t.Kind == lexer.KindEOF {
			break
		}
		// A space only where the original had trivia between tokens keeps
		// multi-token placeholders (`?1`, `:name`, `@name`, `$name`) intact.
		if i > 0 && t.Span.Start > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(m.Text(t.Span))
		prevEnd = t.Span.End
	}
	return b.String()
}
