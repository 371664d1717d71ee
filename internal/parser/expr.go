package parser

import (
	"strconv"
	"strings"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/lexer"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// ParseExpr parses a single expression; ParseExpression calls it for
// callers that only need an expression, not a whole statement.
func (s *state) ParseExpr() ast.Expr {
	return s.parseExpr(1)
}

// parseExpr is the Pratt loop: parse a primary, then keep absorbing
// infix/postfix operators whose binding power is at least minPrec.
func (s *state) parseExpr(minPrec int) ast.Expr {
	left := s.parsePrefix()
	for s.tryInfixOrPostfix(&left, minPrec) {
	}
	return left
}

func (s *state) coverFromExpr(e ast.Expr) srcmap.Span {
	var last srcmap.Span
	if s.pos > 0 {
		last = s.toks[s.pos-1].Span
	} else {
		last = e.Span()
	}
	return e.Span().Cover(last)
}

var punctInfixOps = map[string]ast.Operator{
	"||": ast.OpConcat,
	"->": ast.OpArrow,
	"->>": ast.OpArrowArrow,
	"*":  ast.OpMul,
	"/":  ast.OpDiv,
	"%":  ast.OpMod,
	"+":  ast.OpAdd,
	"-":  ast.OpSub,
	"&":  ast.OpBitAnd,
	"|":  ast.OpBitOr,
	"<<": ast.OpShiftLeft,
	">>": ast.OpShiftRight,
	"<":  ast.OpLt,
	">":  ast.OpGt,
	"<=": ast.OpLe,
	">=": ast.OpGe,
	"=":  ast.OpEq,
	"==": ast.OpEqEq,
	"!=": ast.OpNotEq,
	"<>": ast.OpNotEq2,
}

var keywordInfixOps = map[string]ast.Operator{
	"AND":    ast.OpAnd,
	"OR":     ast.OpOr,
	"IN":     ast.OpIn,
	"LIKE":   ast.OpLike,
	"GLOB":   ast.OpGlob,
	"MATCH":  ast.OpMatch,
	"REGEXP": ast.OpRegexp,
}

// tryInfixOrPostfix consumes one infix or postfix operator at or above
// minPrec applied to *left, mutating *left in place, and reports whether it
// consumed anything. Returning false leaves the token stream untouched.
func (s *state) tryInfixOrPostfix(left *ast.Expr, minPrec int) bool {
	t := s.peek()

	if t.IsKeyword("NOT") {
		op, ok := s.peekNotFamilyOperator()
		if !ok {
			return false
		}
		prec := ast.PrecedenceOf(op)
		if prec.Infix < minPrec {
			return false
		}
		s.take() // NOT
		s.take() // BETWEEN/IN/LIKE/GLOB/MATCH/REGEXP
		if op == ast.OpBetween {
			return s.finishBetween(left, true)
		}
		return s.finishSimpleInfix(left, op, true, prec)
	}

	if t.IsKeyword("ISNULL") {
		prec := ast.PrecedenceOf(ast.OpIsNull)
		if prec.Postfix < minPrec {
			return false
		}
		s.take()
		*left = ast.NewPostfix(s.nextID(), s.coverFromExpr(*left), ast.OpIsNull, *left, "")
		return true
	}
	if t.IsKeyword("NOTNULL") {
		prec := ast.PrecedenceOf(ast.OpNotNull)
		if prec.Postfix < minPrec {
			return false
		}
		s.take()
		*left = ast.NewPostfix(s.nextID(), s.coverFromExpr(*left), ast.OpNotNull, *left, "")
		return true
	}
	if t.IsKeyword("COLLATE") {
		prec := ast.PrecedenceOf(ast.OpCollate)
		if prec.Postfix < minPrec {
			return false
		}
		s.take()
		name := ""
		if nt, ok := s.consumeExpectedIdent(); ok {
			name = nt.Text
		}
		*left = ast.NewPostfix(s.nextID(), s.coverFromExpr(*left), ast.OpCollate, *left, name)
		return true
	}
	if t.IsKeyword("BETWEEN") {
		prec := ast.PrecedenceOf(ast.OpBetween)
		if prec.Infix < minPrec {
			return false
		}
		s.take()
		return s.finishBetween(left, false)
	}
	if t.IsKeyword("IS") {
		prec := ast.PrecedenceOf(ast.OpIs)
		if prec.Infix < minPrec {
			return false
		}
		return s.finishIs(left)
	}
	if op, ok := keywordInfixOps[t.Text]; ok && t.Kind == lexer.KindKeyword {
		prec := ast.PrecedenceOf(op)
		if prec.Infix < minPrec {
			return false
		}
		s.take()
		return s.finishSimpleInfix(left, op, false, prec)
	}
	if t.Kind == lexer.KindPunct {
		if op, ok := punctInfixOps[t.Text]; ok {
			prec := ast.PrecedenceOf(op)
			if prec.Infix < minPrec {
				return false
			}
			s.take()
			return s.finishSimpleInfix(left, op, false, prec)
		}
	}
	return false
}

func (s *state) peekNotFamilyOperator() (ast.Operator, bool) {
	nxt := s.peek2()
	switch {
	case nxt.IsKeyword("BETWEEN"):
		return ast.OpBetween, true
	case nxt.IsKeyword("IN"):
		return ast.OpIn, true
	case nxt.IsKeyword("LIKE"):
		return ast.OpLike, true
	case nxt.IsKeyword("GLOB"):
		return ast.OpGlob, true
	case nxt.IsKeyword("MATCH"):
		return ast.OpMatch, true
	case nxt.IsKeyword("REGEXP"):
		return ast.OpRegexp, true
	}
	return ast.OpInvalid, false
}

func (s *state) finishSimpleInfix(left *ast.Expr, op ast.Operator, not bool, prec ast.Precedence) bool {
	lhs := *left
	rhs := s.parseExpr(prec.Infix + 1)
	inf := ast.NewInfix(s.nextID(), s.coverFromExpr(lhs), op, not, lhs, rhs)
	if op == ast.OpLike {
		if _, ok := s.takeIfKeyword("ESCAPE"); ok {
			inf.Escape = s.parseExpr(prec.Infix + 1)
		}
	}
	*left = inf
	return true
}

// finishBetween handles `value [NOT] BETWEEN lo AND hi`, parsing lo at one
// precedence above AND so a bare top-level AND is not swallowed into lo, and
// the explicit AND keyword here is consumed by this function rather than by
// the generic infix loop.
func (s *state) finishBetween(left *ast.Expr, not bool) bool {
	loPrec := ast.PrecedenceOf(ast.OpAnd).Infix + 1
	lo := s.parseExpr(loPrec)
	s.consumeExpectedKeyword("AND")
	hiPrec := ast.PrecedenceOf(ast.OpBetween).Infix + 1
	hi := s.parseExpr(hiPrec)
	value := *left
	between := ast.NewBetween(s.nextID(), s.coverFromExpr(value), not, value, lo, hi)
	*left = between
	return true
}

func (s *state) finishIs(left *ast.Expr) bool {
	s.take() // IS
	not := false
	if _, ok := s.takeIfKeyword("NOT"); ok {
		not = true
	}
	op := ast.OpIs
	if not {
		op = ast.OpIsNot
	}
	if s.peek().IsKeyword("DISTINCT") && s.peek2().IsKeyword("FROM") {
		s.take()
		s.take()
		if not {
			op = ast.OpIsNotDistinctFrom
		} else {
			op = ast.OpIsDistinctFrom
		}
	}
	prec := ast.PrecedenceOf(op)
	rhs := s.parseExpr(prec.Infix + 1)
	*left = ast.NewInfix(s.nextID(), s.coverFromExpr(*left), op, false, *left, rhs)
	return true
}

// parsePrefix parses one primary expression, including any unary prefix
// operator applied to it.
func (s *state) parsePrefix() ast.Expr {
	start := s.pos
	t := s.peek()
	switch {
	case t.Kind == lexer.KindInt:
		s.take()
		kind := ast.LiteralInt
		if strings.HasPrefix(t.Text, "0x") || strings.HasPrefix(t.Text, "0X") {
			kind = ast.LiteralHex
		}
		return ast.NewLiteral(s.nextID(), t.Span, kind, t.Text)
	case t.Kind == lexer.KindDouble:
		s.take()
		return ast.NewLiteral(s.nextID(), t.Span, ast.LiteralDouble, t.Text)
	case t.Kind == lexer.KindString:
		s.take()
		return ast.NewLiteral(s.nextID(), t.Span, ast.LiteralString, t.Text)
	case t.IsKeyword("NULL"):
		s.take()
		return ast.NewLiteral(s.nextID(), t.Span, ast.LiteralNull, "NULL")
	case t.IsKeyword("CURRENT_TIME") || t.IsKeyword("CURRENT_DATE") || t.IsKeyword("CURRENT_TIMESTAMP"):
		s.take()
		return ast.NewLiteral(s.nextID(), t.Span, ast.LiteralString, t.Text)
	case t.IsKeyword("CAST"):
		return s.parseCast()
	case t.IsKeyword("CASE"):
		return s.parseCase()
	case t.IsKeyword("NOT") && s.peek2().IsKeyword("EXISTS"):
		s.take()
		s.take()
		return s.finishExists(start, true)
	case t.IsKeyword("EXISTS"):
		s.take()
		return s.finishExists(start, false)
	case t.IsKeyword("NOT"):
		s.take()
		rhs := s.parseExpr(ast.PrecedenceOf(ast.OpNot).Prefix)
		return ast.NewPrefix(s.nextID(), s.spanFrom(start), ast.OpNot, rhs)
	case t.IsPunct("-"):
		s.take()
		rhs := s.parseExpr(ast.PrecedenceOf(ast.OpUnaryNeg).Prefix)
		return ast.NewPrefix(s.nextID(), s.spanFrom(start), ast.OpUnaryNeg, rhs)
	case t.IsPunct("+"):
		s.take()
		rhs := s.parseExpr(ast.PrecedenceOf(ast.OpUnaryPlus).Prefix)
		return ast.NewPrefix(s.nextID(), s.spanFrom(start), ast.OpUnaryPlus, rhs)
	case t.IsPunct("~"):
		s.take()
		rhs := s.parseExpr(ast.PrecedenceOf(ast.OpBitNot).Prefix)
		return ast.NewPrefix(s.nextID(), s.spanFrom(start), ast.OpBitNot, rhs)
	case t.IsPunct("("):
		return s.parseParenExprOrTuple()
	case t.IsPunct("?") || t.IsPunct(":") || t.IsPunct("@") || t.IsPunct("$"):
		return s.parseBindParameter()
	case t.Kind == lexer.KindIdent:
		return s.parseNameExpr()
	default:
		s.take()
		s.errfAt(t.Span, "unexpected token %s in expression", s.describe(t))
		return ast.NewInvalid(s.nextID(), t.Span, "unexpected token")
	}
}

func unquoteIdent(t lexer.Token) string {
	if t.Kind == lexer.KindIdent {
		return lexer.Unquote(t.Text)
	}
	return t.Text
}

func (s *state) parseNameExpr() ast.Expr {
	start := s.pos
	parts := []string{unquoteIdent(s.take())}
	for {
		if _, ok := s.takeIfPunct("."); !ok {
			break
		}
		if s.peek().IsPunct("*") {
			s.take()
			parts = append(parts, "*")
			break
		}
		nt, ok := s.consumeExpectedIdent()
		if !ok {
			break
		}
		parts = append(parts, unquoteIdent(nt))
	}
	if s.peek().IsPunct("(") {
		if bp, ok := s.tryParseSQLCMacro(start, parts); ok {
			return bp
		}
		return s.finishFunctionCall(start, parts)
	}
	var schema, table, name string
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		table, name = parts[0], parts[1]
	default:
		schema, table, name = parts[0], parts[1], parts[2]
	}
	return ast.NewColumn(s.nextID(), s.spanFrom(start), schema, table, name)
}

// tryParseSQLCMacro recognizes sqlc.arg('name'), sqlc.narg('name') and
// sqlc.slice('name') as named bind parameters. The caller has already
// consumed "sqlc" "." "arg"/"narg"/"slice" into parts and left the cursor on
// "(". If the shape doesn't match (string literal, then close paren) no
// tokens are consumed and the caller falls back to an ordinary function call.
func (s *state) tryParseSQLCMacro(start int, parts []string) (ast.Expr, bool) {
	if len(parts) != 2 || parts[0] != "sqlc" {
		return nil, false
	}
	macro := parts[1]
	if macro != "arg" && macro != "narg" && macro != "slice" {
		return nil, false
	}
	if s.peekN(1).Kind != lexer.KindString || !s.peekN(2).IsPunct(")") {
		return nil, false
	}
	s.take() // '('
	nameTok := s.take()
	s.take() // ')'
	name := nameTok.Text
	kind := ast.ParamColon
	if macro == "narg" {
		kind = ast.ParamSQLCNarg
	}
	bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), kind, name, 0)
	bp.Index = s.params.named(":" + name)
	return bp, true
}

func (s *state) finishFunctionCall(start int, parts []string) ast.Expr {
	name := parts[len(parts)-1]
	table := ""
	if len(parts) > 1 {
		table = strings.Join(parts[:len(parts)-1], ".")
	}
	s.take() // '('
	distinct := false
	if _, ok := s.takeIfKeyword("DISTINCT"); ok {
		distinct = true
	}
	star := false
	var args []ast.Expr
	if s.peek().IsPunct("*") {
		s.take()
		star = true
	} else if !s.peek().IsPunct(")") {
		args = append(args, s.parseExpr(1))
		for {
			if _, ok := s.takeIfPunct(","); ok {
				args = append(args, s.parseExpr(1))
				continue
			}
			break
		}
	}
	s.consumeExpectedPunct(")")
	var filter ast.Expr
	if _, ok := s.takeIfKeyword("FILTER"); ok {
		s.consumeExpectedPunct("(")
		s.consumeExpectedKeyword("WHERE")
		filter = s.parseExpr(1)
		s.consumeExpectedPunct(")")
	}
	if _, ok := s.takeIfKeyword("OVER"); ok {
		s.skipWindowSpec()
	}
	return ast.NewFunction(s.nextID(), s.spanFrom(start), table, name, args, distinct, star, filter)
}

// skipWindowSpec tolerates `OVER window_name` or `OVER (...)` without
// modeling window functions; their result type still resolves through the
// built-in function table as if they were ordinary calls.
func (s *state) skipWindowSpec() {
	if s.peek().IsPunct("(") {
		s.skipBalancedParens()
		return
	}
	s.take()
}

func (s *state) skipBalancedParens() {
	depth := 0
	for !s.atEOF() {
		t := s.take()
		if t.IsPunct("(") {
			depth++
		} else if t.IsPunct(")") {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (s *state) parseParenExprOrTuple() ast.Expr {
	start := s.pos
	s.take() // '('
	if s.peek().IsKeyword("SELECT") || s.peek().IsKeyword("WITH") {
		sel := s.parseSelect()
		s.consumeExpectedPunct(")")
		return ast.NewSubquerySelect(s.nextID(), s.spanFrom(start), sel)
	}
	if s.peek().IsPunct(")") {
		s.take()
		return ast.NewGrouped(s.nextID(), s.spanFrom(start), nil)
	}
	exprs := []ast.Expr{s.parseExpr(1)}
	for {
		if _, ok := s.takeIfPunct(","); ok {
			exprs = append(exprs, s.parseExpr(1))
			continue
		}
		break
	}
	s.consumeExpectedPunct(")")
	return ast.NewGrouped(s.nextID(), s.spanFrom(start), exprs)
}

func (s *state) parseBindParameter() ast.Expr {
	start := s.pos
	sig := s.take()
	switch sig.Text {
	case "?":
		if s.peek().Kind == lexer.KindInt && s.peek().Span.Start == sig.Span.End {
			numTok := s.take()
			n, _ := strconv.Atoi(numTok.Text)
			bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), ast.ParamNumbered, "", n)
			bp.Index = s.params.numbered(n)
			return bp
		}
		bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), ast.ParamQuestion, "", 0)
		bp.Index = s.params.question()
		return bp
	case ":":
		name := ""
		if nt, ok := s.consumeExpectedIdent(); ok {
			name = nt.Text
		}
		bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), ast.ParamColon, name, 0)
		bp.Index = s.params.named(":" + name)
		return bp
	case "@":
		name := ""
		if nt, ok := s.consumeExpectedIdent(); ok {
			name = nt.Text
		}
		bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), ast.ParamAt, name, 0)
		bp.Index = s.params.named("@" + name)
		return bp
	default: // "$"
		name := ""
		if nt, ok := s.consumeExpectedIdent(); ok {
			name = nt.Text
		}
		// Tcl-style dollar parameters allow ::-separated path segments and a
		// parenthesized suffix: $db::user(name).
		for s.peek().IsPunct(":") && s.peek2().IsPunct(":") {
			s.take()
			s.take()
			if nt, ok := s.consumeExpectedIdent(); ok {
				name += "::" + nt.Text
			}
		}
		if s.peek().IsPunct("(") && s.peek2().Kind == lexer.KindIdent && s.peekN(2).IsPunct(")") {
			s.take()
			suffix := s.take().Text
			s.take()
			name += "(" + suffix + ")"
		}
		bp := ast.NewBindParameter(s.nextID(), s.spanFrom(start), ast.ParamDollar, name, 0)
		bp.Index = s.params.named("$" + name)
		return bp
	}
}

func (s *state) parseCast() ast.Expr {
	start := s.pos
	s.take() // CAST
	s.consumeExpectedPunct("(")
	e := s.parseExpr(1)
	s.consumeExpectedKeyword("AS")
	typ := s.parseTypeName()
	s.consumeExpectedPunct(")")
	return ast.NewCast(s.nextID(), s.spanFrom(start), e, typ)
}

// typeNameStopKeywords are the keywords that end a multi-word type name:
// each one starts a column constraint or the rest of the enclosing clause.
// Multi-word type names themselves ("UNSIGNED BIG INT", "DOUBLE PRECISION")
// lex as plain identifiers, never as these keywords.
var typeNameStopKeywords = map[string]bool{
	"NOT": true, "NULL": true, "PRIMARY": true, "UNIQUE": true,
	"DEFAULT": true, "COLLATE": true, "REFERENCES": true, "GENERATED": true,
	"AS": true, "CHECK": true, "CONSTRAINT": true, "ON": true,
}

// parseTypeName joins a type name's identifier tokens and any trailing
// `(n[,n])` precision/scale group into its canonical declared-type spelling.
func (s *state) parseTypeName() string {
	var b strings.Builder
	for {
		t := s.peek()
		if t.Kind != lexer.KindIdent && t.Kind != lexer.KindKeyword {
			break
		}
		if t.Kind == lexer.KindKeyword && typeNameStopKeywords[t.Text] {
			break
		}
		s.take()
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	if s.peek().IsPunct("(") {
		s.take()
		b.WriteString("(")
		first := true
		for !s.peek().IsPunct(")") && !s.atEOF() {
			if !first {
				b.WriteString(",")
			}
			first = false
			b.WriteString(s.take().Text)
		}
		s.consumeExpectedPunct(")")
		b.WriteString(")")
	}
	return b.String()
}

func (s *state) parseCase() ast.Expr {
	start := s.pos
	s.take() // CASE
	var scrutinee ast.Expr
	if !s.peek().IsKeyword("WHEN") {
		scrutinee = s.parseExpr(1)
	}
	var arms []ast.WhenThen
	for {
		if _, ok := s.takeIfKeyword("WHEN"); !ok {
			break
		}
		when := s.parseExpr(1)
		s.consumeExpectedKeyword("THEN")
		then := s.parseExpr(1)
		arms = append(arms, ast.WhenThen{When: when, Then: then})
	}
	var els ast.Expr
	if _, ok := s.takeIfKeyword("ELSE"); ok {
		els = s.parseExpr(1)
	}
	s.consumeExpectedKeyword("END")
	return ast.NewCaseWhenThen(s.nextID(), s.spanFrom(start), scrutinee, arms, els)
}

func (s *state) finishExists(start int, not bool) ast.Expr {
	s.consumeExpectedPunct("(")
	sel := s.parseSelect()
	s.consumeExpectedPunct(")")
	return ast.NewExists(s.nextID(), s.spanFrom(start), not, sel)
}
