package schema

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wickwirew/sqlsig/internal/ast"
)

// ValueKind classifies a column's folded DEFAULT literal.
type ValueKind int

const (
	// ValueNone means the column carries no statically-representable default
	// (no DEFAULT clause, or one too dynamic to fold: CURRENT_TIMESTAMP, an
	// expression).
	ValueNone ValueKind = iota
	ValueNull
	ValueDecimal
	ValueText
)

// Value is a column's folded DEFAULT, used by an emitter to generate a
// zero-value or literal default for generated structs. Numeric defaults are
// captured as decimal.Decimal rather than float64: SQLite's NUMERIC/DECIMAL
// affinity columns (and integer literals past the float64 mantissa) need
// exact decimal text preserved, not a lossy round-trip through float64.
type Value struct {
	Kind    ValueKind
	Decimal decimal.Decimal
	Text    string
}

func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return "NULL"
	case ValueDecimal:
		return v.Decimal.String()
	case ValueText:
		return v.Text
	default:
		return ""
	}
}

// evalDefault folds a DEFAULT clause's expression into a Value when it is one
// of the literal forms SQLite allows unparenthesized after DEFAULT (signed
// numeric literal, string literal, NULL). CURRENT_* keywords and anything
// needing the parenthesized expression form are left unfolded: the column
// still gets its affinity type, it just has no static Value to report.
func evalDefault(e ast.Expr) (Value, bool) {
	negate := false
	if pre, ok := e.(*ast.Prefix); ok && pre.Op == ast.OpUnaryNeg {
		negate = true
		e = pre.RHS
	}
	lit, ok := e.(*ast.Literal)
	if !ok {
		return Value{}, false
	}
	switch lit.Kind {
	case ast.LiteralNull:
		return Value{Kind: ValueNull}, true
	case ast.LiteralInt, ast.LiteralDouble:
		text := strings.ReplaceAll(lit.Text, "_", "")
		d, err := decimal.NewFromString(text)
		if err != nil {
			return Value{}, false
		}
		if negate {
			d = d.Neg()
		}
		return Value{Kind: ValueDecimal, Decimal: d}, true
	case ast.LiteralString:
		if negate {
			return Value{}, false
		}
		// CURRENT_TIME/DATE/TIMESTAMP parse to a string literal holding the
		// keyword itself; unlike a quoted string, its span is exactly its text.
		if lit.Span().Len() == len(lit.Text) {
			return Value{}, false
		}
		return Value{Kind: ValueText, Text: lit.Text}, true
	default:
		return Value{}, false
	}
}
