package parser

import (
	"strings"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/lexer"
)

// Parse scans and parses every statement in src, returning the syntax
// forest in source order. Parsing never aborts: a malformed statement
// produces diagnostics and is skipped, and the remainder of the file is
// still parsed.
func Parse(file, src string, bag *diag.Bag) []ast.Stmt {
	toks := lexer.Scan(file, src, bag)
	st := newState(file, src, toks, bag)
	var stmts []ast.Stmt
	for !st.atEOF() {
		for st.peek().IsPunct(";") {
			st.take()
		}
		if st.atEOF() {
			break
		}
		st.params = newParamTable()
		stmt := st.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if !st.atEOF() && !st.peek().IsPunct(";") {
			st.errf("expected ';' after statement, found %s", st.describe(st.peek()))
			st.synchronize()
		} else {
			st.takeIfPunct(";")
		}
	}
	return stmts
}

// ParseExpression parses src as a single standalone expression, outside any
// enclosing statement. Used by callers that only need to analyze one
// expression fragment, such as default-value or check-constraint tooling
// built on top of the schema builder.
func ParseExpression(file, src string, bag *diag.Bag) ast.Expr {
	toks := lexer.Scan(file, src, bag)
	st := newState(file, src, toks, bag)
	return st.ParseExpr()
}

// parseStatement dispatches on the leading keyword. A CREATE TABLE/VIEW/
// VIRTUAL TABLE statement may be preceded by a doc comment, which the
// lexer does not surface directly (comments are pure trivia); instead the
// parser recovers it from the raw source text immediately before the
// statement's CREATE token.
func (s *state) parseStatement() ast.Stmt {
	start := s.pos
	t := s.peek()
	switch {
	case t.IsKeyword("CREATE"):
		doc := s.leadingDocComment()
		return s.parseCreate(start, doc)
	case t.IsKeyword("ALTER"):
		return s.parseAlterTable(start)
	case t.IsKeyword("DROP"):
		return s.parseDrop(start)
	case t.IsKeyword("SELECT"), t.IsKeyword("WITH"):
		return s.parseSelect()
	case t.IsKeyword("INSERT"), t.IsKeyword("REPLACE"):
		return s.parseInsert(start)
	case t.IsKeyword("UPDATE"):
		return s.parseUpdate(start)
	case t.IsKeyword("DELETE"):
		return s.parseDelete(start)
	case t.IsKeyword("PRAGMA"):
		return s.parsePragma(start)
	case t.IsKeyword("REINDEX"):
		return s.parseReindex(start)
	case t.IsKeyword("EXPLAIN"):
		s.take()
		s.takeIfKeyword("QUERY")
		s.takeIfKeyword("PLAN")
		return s.parseStatement()
	case t.IsKeyword("BEGIN"), t.IsKeyword("COMMIT"), t.IsKeyword("ROLLBACK"),
		t.IsKeyword("SAVEPOINT"), t.IsKeyword("RELEASE"):
		return s.parseTransactionControl(start)
	case t.IsKeyword("VACUUM"), t.IsKeyword("ATTACH"), t.IsKeyword("DETACH"), t.IsKeyword("ANALYZE"):
		s.synchronize()
		return nil
	default:
		s.errf("unexpected token %s at start of statement", s.describe(t))
		s.synchronize()
		return nil
	}
}

// parseTransactionControl skips BEGIN/COMMIT/ROLLBACK/SAVEPOINT/RELEASE
// statements; transaction control never participates in signature
// inference but must not be treated as a syntax error.
func (s *state) parseTransactionControl(start int) ast.Stmt {
	_ = start
	for !s.atEOF() && !s.peek().IsPunct(";") {
		s.take()
	}
	return nil
}

// leadingDocComment scans backward from the current token's start offset
// (to the previous token, or the start of the source for the first
// statement) over whitespace and at most a single contiguous run of `--`
// comment lines, returning their joined, de-prefixed text. Block comments are not
// treated as doc comments, matching the convention that `-- ...` lines
// directly above a CREATE are its documentation.
func (s *state) leadingDocComment() string {
	prevEnd := 0
	if s.pos > 0 {
		prevEnd = int(s.toks[s.pos-1].Span.End)
	}
	curStart := int(s.toks[s.pos].Span.Start)
	between := s.srcBetween(prevEnd, curStart)
	lines := strings.Split(between, "\n")
	var doc []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if len(doc) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "--") {
			doc = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "--"))}, doc...)
			continue
		}
		break
	}
	return strings.Join(doc, " ")
}

func (s *state) srcBetween(start, end int) string {
	if s.src == "" || start < 0 || end > len(s.src) || start > end {
		return ""
	}
	return s.src[start:end]
}
