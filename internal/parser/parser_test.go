package parser

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/diag"
)

// parseExprNoErrors parses src as a standalone expression and fails the test
// if it produced any diagnostics, since every fixture in this file is
// expected to be syntactically valid.
func parseExprNoErrors(t *testing.T, src string) ast.Expr {
	t.Helper()
	bag := diag.NewBag()
	e := ParseExpression("fixture.sql", src, bag)
	if bag.HasErrors() {
		t.Fatalf("parsing %q produced errors: %+v", src, bag.All())
	}
	return e
}

// TestParserRoundTrip checks that rendering a parsed expression's syntax
// tree with fully parenthesized infix operators and reparsing it reaches a
// fixed point. If precedence were lost in parsing, the first render would
// already disambiguate incorrectly and the second parse/render pass would
// disagree with the first.
func TestParserRoundTrip(t *testing.T) {
	cases := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"a AND b OR c",
		"a OR b AND c",
		"NOT a AND b",
		"x BETWEEN 1 AND 10",
		"x NOT BETWEEN 1 AND 10",
		"x BETWEEN 1 AND 10 AND y",
		"a = 1 AND b = 2 OR c = 3",
		"x IN (1, 2, 3)",
		"x NOT IN (SELECT id FROM t)",
		"x IS NOT DISTINCT FROM y",
		"x IS DISTINCT FROM y",
		"-x + 1",
		"- -x",
		"x || y || z",
		"x LIKE 'a%' ESCAPE '\\'",
		"CAST(x AS INTEGER)",
		"CASE WHEN a THEN 1 WHEN b THEN 2 ELSE 3 END",
		"CASE x WHEN 1 THEN 'one' ELSE 'other' END",
		"count(DISTINCT x)",
		"count(*)",
		"coalesce(a, b, c)",
		"EXISTS (SELECT 1 FROM t WHERE t.id = x)",
		"x >> 2 | y & 1",
		"x << 1 + 2",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			first := parseExprNoErrors(t, src)
			rendered1 := ast.RenderExpr(first)

			second := parseExprNoErrors(t, rendered1)
			rendered2 := ast.RenderExpr(second)

			if rendered1 != rendered2 {
				t.Errorf("round trip not a fixed point:\n  src:      %s\n  render 1: %s\n  render 2: %s", src, rendered1, rendered2)
			}
		})
	}
}

// TestBetweenBindsTighterThanAnd checks that `x BETWEEN 1 AND 10 AND y` parses
// the trailing `AND y` as a top-level AND rather than being swallowed into
// BETWEEN's range, i.e. BETWEEN's own AND is not a general-purpose infix AND.
func TestBetweenBindsTighterThanAnd(t *testing.T) {
	e := parseExprNoErrors(t, "x BETWEEN 1 AND 10 AND y")
	infix, ok := e.(*ast.Infix)
	if !ok || infix.Op != ast.OpAnd {
		t.Fatalf("top-level node = %T, want *ast.Infix{Op: OpAnd}", e)
	}
	if _, ok := infix.LHS.(*ast.Between); !ok {
		t.Errorf("LHS of top-level AND = %T, want *ast.Between", infix.LHS)
	}
}

// TestNotBetweenIsNegatedOnTheBetweenNode confirms `NOT` directly preceding
// BETWEEN is folded into Between.Not rather than wrapped as a separate
// Prefix(OpNot, ...) node.
func TestNotBetweenIsNegatedOnTheBetweenNode(t *testing.T) {
	e := parseExprNoErrors(t, "x NOT BETWEEN 1 AND 10")
	between, ok := e.(*ast.Between)
	if !ok {
		t.Fatalf("got %T, want *ast.Between", e)
	}
	if !between.Not {
		t.Errorf("Between.Not = false, want true")
	}
}

// TestAndBindsTighterThanOr checks standard SQL precedence: `a OR b AND c`
// groups as `a OR (b AND c)`.
func TestAndBindsTighterThanOr(t *testing.T) {
	e := parseExprNoErrors(t, "a OR b AND c")
	or, ok := e.(*ast.Infix)
	if !ok || or.Op != ast.OpOr {
		t.Fatalf("top-level node = %T, want *ast.Infix{Op: OpOr}", e)
	}
	and, ok := or.RHS.(*ast.Infix)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("RHS of OR = %T, want *ast.Infix{Op: OpAnd}", or.RHS)
	}
}

// TestIsNotDistinctFromIsASingleOperator confirms the four-token sequence
// `IS NOT DISTINCT FROM` is recognized as one operator rather than `IS`
// composed with a separate `NOT DISTINCT FROM` fragment.
func TestIsNotDistinctFromIsASingleOperator(t *testing.T) {
	e := parseExprNoErrors(t, "x IS NOT DISTINCT FROM y")
	infix, ok := e.(*ast.Infix)
	if !ok || infix.Op != ast.OpIsNotDistinctFrom {
		t.Fatalf("got %T (op %v), want *ast.Infix{Op: OpIsNotDistinctFrom}", e, infixOpOrZero(e))
	}
}

// TestDollarParameterPathAndSuffix covers the Tcl-style dollar spelling:
// ::-separated path segments and an optional parenthesized suffix are all
// part of one parameter name.
func TestDollarParameterPathAndSuffix(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"$id", "id"},
		{"$db::user", "db::user"},
		{"$db::user(name)", "db::user(name)"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			e := parseExprNoErrors(t, tc.src)
			bp, ok := e.(*ast.BindParameter)
			if !ok {
				t.Fatalf("got %T, want *ast.BindParameter", e)
			}
			if bp.ParamKind != ast.ParamDollar {
				t.Errorf("ParamKind = %v, want ParamDollar", bp.ParamKind)
			}
			if bp.Name != tc.want {
				t.Errorf("Name = %q, want %q", bp.Name, tc.want)
			}
		})
	}
}

// TestColumnTypeNameStopsAtConstraintKeywords guards the declared-type
// scanner against swallowing NOT NULL / PRIMARY KEY into the type name.
func TestColumnTypeNameStopsAtConstraintKeywords(t *testing.T) {
	bag := diag.NewBag()
	stmts := Parse("fixture.sql", `CREATE TABLE t(id INTEGER PRIMARY KEY, label UNSIGNED BIG INT NOT NULL);`, bag)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	ct, ok := stmts[0].(*ast.CreateTable)
	if !ok {
		t.Fatalf("got %T, want *ast.CreateTable", stmts[0])
	}
	if len(ct.Columns) != 2 {
		t.Fatalf("columns = %+v, want 2", ct.Columns)
	}
	if ct.Columns[0].TypeName != "INTEGER" || !ct.Columns[0].PrimaryKey {
		t.Errorf("id column = %+v, want TypeName INTEGER with PrimaryKey set", ct.Columns[0])
	}
	if ct.Columns[1].TypeName != "UNSIGNED BIG INT" || !ct.Columns[1].NotNull {
		t.Errorf("label column = %+v, want TypeName \"UNSIGNED BIG INT\" with NotNull set", ct.Columns[1])
	}
}

func infixOpOrZero(e ast.Expr) ast.Operator {
	if infix, ok := e.(*ast.Infix); ok {
		return infix.Op
	}
	return ast.OpInvalid
}
