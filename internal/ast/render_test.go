package ast

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/srcmap"
)

func TestRenderLiteralKinds(t *testing.T) {
	cases := []struct {
		name string
		lit  *Literal
		want string
	}{
		{"null", NewLiteral(0, srcmap.Span{}, LiteralNull, ""), "NULL"},
		{"int", NewLiteral(0, srcmap.Span{}, LiteralInt, "42"), "42"},
		{"double", NewLiteral(0, srcmap.Span{}, LiteralDouble, "3.14"), "3.14"},
		{"hex", NewLiteral(0, srcmap.Span{}, LiteralHex, "0xFF"), "0xFF"},
		{"string", NewLiteral(0, srcmap.Span{}, LiteralString, "hi"), "'hi'"},
		{"string with embedded quote", NewLiteral(0, srcmap.Span{}, LiteralString, "it's"), "'it''s'"},
		{"blob", NewLiteral(0, srcmap.Span{}, LiteralBlob, "DEADBEEF"), "x'DEADBEEF'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderExpr(tc.lit); got != tc.want {
				t.Errorf("RenderExpr() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderBindParameterKinds(t *testing.T) {
	cases := []struct {
		name  string
		param *BindParameter
		want  string
	}{
		{"question", NewBindParameter(0, srcmap.Span{}, ParamQuestion, "", 0), "?"},
		{"numbered", NewBindParameter(0, srcmap.Span{}, ParamNumbered, "", 3), "?3"},
		{"colon", NewBindParameter(0, srcmap.Span{}, ParamColon, "id", 0), ":id"},
		{"at", NewBindParameter(0, srcmap.Span{}, ParamAt, "id", 0), "@id"},
		{"dollar", NewBindParameter(0, srcmap.Span{}, ParamDollar, "id", 0), "$id"},
		{"sqlc narg", NewBindParameter(0, srcmap.Span{}, ParamSQLCNarg, "id", 0), "sqlc.narg('id')"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderExpr(tc.param); got != tc.want {
				t.Errorf("RenderExpr() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderColumnQualification(t *testing.T) {
	cases := []struct {
		name string
		col  *Column
		want string
	}{
		{"bare", NewColumn(0, srcmap.Span{}, "", "", "id"), "id"},
		{"table qualified", NewColumn(0, srcmap.Span{}, "", "users", "id"), "users.id"},
		{"schema and table qualified", NewColumn(0, srcmap.Span{}, "main", "users", "id"), "main.users.id"},
		{"star", NewColumn(0, srcmap.Span{}, "", "users", "*"), "users.*"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderExpr(tc.col); got != tc.want {
				t.Errorf("RenderExpr() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderSingleElementGroupedIsTransparent(t *testing.T) {
	inner := NewColumn(0, srcmap.Span{}, "", "", "x")
	grouped := NewGrouped(0, srcmap.Span{}, []Expr{inner})
	if got := RenderExpr(grouped); got != "x" {
		t.Errorf("RenderExpr(single-element Grouped) = %q, want %q (no added parens)", got, "x")
	}
}

func TestRenderMultiElementGroupedIsATuple(t *testing.T) {
	a := NewLiteral(0, srcmap.Span{}, LiteralInt, "1")
	b := NewLiteral(0, srcmap.Span{}, LiteralInt, "2")
	grouped := NewGrouped(0, srcmap.Span{}, []Expr{a, b})
	if got := RenderExpr(grouped); got != "(1, 2)" {
		t.Errorf("RenderExpr(multi-element Grouped) = %q, want %q", got, "(1, 2)")
	}
}

func TestRenderNilExprIsEmpty(t *testing.T) {
	if got := RenderExpr(nil); got != "" {
		t.Errorf("RenderExpr(nil) = %q, want empty", got)
	}
}

func TestRenderFunctionStarAndFilter(t *testing.T) {
	cond := NewColumn(0, srcmap.Span{}, "", "", "active")
	fn := NewFunction(0, srcmap.Span{}, "", "count", nil, false, true, cond)
	if got := RenderExpr(fn); got != "count(*) FILTER (WHERE active)" {
		t.Errorf("RenderExpr() = %q", got)
	}
}

func TestRenderCastAndInvalid(t *testing.T) {
	col := NewColumn(0, srcmap.Span{}, "", "", "x")
	cast := NewCast(0, srcmap.Span{}, col, "INTEGER")
	if got := RenderExpr(cast); got != "CAST(x AS INTEGER)" {
		t.Errorf("RenderExpr(cast) = %q", got)
	}

	invalid := NewInvalid(0, srcmap.Span{}, "unexpected token")
	if got := RenderExpr(invalid); got != "<invalid>" {
		t.Errorf("RenderExpr(invalid) = %q", got)
	}
}
