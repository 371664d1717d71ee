package checker

import (
	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/builtins"
	"github.com/wickwirew/sqlsig/internal/resolve"
	"github.com/wickwirew/sqlsig/internal/schema"
	"github.com/wickwirew/sqlsig/internal/srcmap"
	"github.com/wickwirew/sqlsig/internal/types"
)

// inferSelect type-checks a SELECT (standalone, correlated subquery, or CTE
// body) against parentEnv, which supplies any outer-scope bindings a
// correlated subquery may reference. It shares this checker's Unifier and
// parameter table, so a subquery's bind parameters number consecutively
// with the rest of the enclosing statement.
func (f *infer) inferSelect(parentEnv *resolve.Environment, sel *ast.Select) *Signature {
	for _, cte := range sel.CTEs {
		cteSig := f.inferSelect(parentEnv, cte.Select)
		if len(cte.Columns) == len(cteSig.Output) {
			for i, name := range cte.Columns {
				cteSig.Output[i].Name = name
			}
		}
		if f.ctes == nil {
			f.ctes = map[string]*schema.Table{}
		}
		f.ctes[cte.Name] = syntheticTable(cte.Name, cteSig.Output)
	}

	env := f.buildFromEnv(parentEnv, sel.From, sel.Span())

	if sel.Where != nil {
		f.inferExpr(env, sel.Where)
	}
	for _, g := range sel.GroupBy {
		f.inferExpr(env, g)
	}
	if sel.Having != nil {
		f.inferExpr(env, sel.Having)
	}
	for _, ot := range sel.OrderBy {
		f.inferExpr(env, ot.Expr)
	}
	if sel.Limit != nil {
		f.inferExpr(env, sel.Limit)
	}
	if sel.Offset != nil {
		f.inferExpr(env, sel.Offset)
	}

	output := f.resolveProjection(env, sel.Columns, sel.Span())

	if sel.Compound != ast.CompoundNone && sel.CompoundOf != nil {
		nextSig := f.inferSelect(parentEnv, sel.CompoundOf)
		if len(nextSig.Output) == len(output) {
			for i := range output {
				merged, _ := types.Lub(output[i].Type, nextSig.Output[i].Type)
				output[i].Type = merged
			}
		} else {
			f.c.Bag.Errorf(f.c.File, sel.Span(), "compound SELECT arms return differing column counts (%d vs %d)", len(output), len(nextSig.Output))
		}
	}

	card := CardinalityMany
	switch {
	case isLimitOne(sel.Limit):
		card = CardinalityOne
	case len(sel.GroupBy) == 0 && containsAggregate(sel.Columns):
		card = CardinalityOne
	}

	return f.finish(output, card)
}

// buildFromEnv processes a FROM clause into a child scope of parentEnv,
// walking joins left to right and applying USING/NATURAL merges and
// nullability propagation as each table source is imported.
func (f *infer) buildFromEnv(parentEnv *resolve.Environment, from []ast.TableSource, selSpan srcmap.Span) *resolve.Environment {
	env := parentEnv.Child()
	f.extendFromEnv(env, from, selSpan)
	return env
}

// extendFromEnv imports every table source in from directly into env
// (rather than a child of it), used by UPDATE's optional FROM clause where
// the target table and the extra sources must share one scope so RETURNING
// can see both.
func (f *infer) extendFromEnv(env *resolve.Environment, from []ast.TableSource, selSpan srcmap.Span) {
	var prev resolve.TableBinding
	havePrev := false

	for _, ts := range from {
		tbl, alias := f.resolveTableSource(env, ts, selSpan)

		switch ts.Join {
		case ast.JoinRight, ast.JoinFull:
			env.MarkAllOptional()
		}
		isOptional := ts.Join == ast.JoinLeft || ts.Join == ast.JoinFull
		env.Import(tbl, alias, isOptional)

		cur, _ := env.LookupAlias(bindingName(alias, tbl))
		if havePrev {
			switch {
			case ts.Natural:
				cols := resolve.NaturalJoinColumns(&prev, &cur)
				env.MergeUsing(prev, cur, cols)
			case len(ts.JoinUsing) > 0:
				env.MergeUsing(prev, cur, ts.JoinUsing)
			}
			if ts.JoinOn != nil {
				f.inferExpr(env, ts.JoinOn)
			}
		}
		prev, havePrev = cur, true
	}
}

func bindingName(alias string, tbl *schema.Table) string {
	if alias != "" {
		return alias
	}
	return tbl.Name
}

func (f *infer) resolveTableSource(env *resolve.Environment, ts ast.TableSource, selSpan srcmap.Span) (*schema.Table, string) {
	switch {
	case ts.Subquery != nil:
		sig := f.inferSelect(env, ts.Subquery)
		return syntheticTable(ts.Alias, sig.Output), ts.Alias
	case ts.Func != nil:
		for _, a := range ts.Func.Args {
			f.inferExpr(env, a)
		}
		return &schema.Table{
			Name:        ts.Func.Name,
			Columns:     []schema.Column{{Name: "value", Type: types.NewAny()}},
			ColumnIndex: map[string]int{"value": 0},
		}, ts.Alias
	default:
		if tbl, ok := f.ctes[ts.Table]; ok {
			return tbl, ts.Alias
		}
		t, ok := f.c.Schema.Lookup(schema.QualifiedName{Schema: ts.Schema, Name: ts.Table})
		if !ok {
			f.c.Bag.Errorf(f.c.File, selSpan, "unknown table %q", ts.Table)
			return &schema.Table{Name: ts.Table, ColumnIndex: map[string]int{}}, ts.Alias
		}
		f.c.resolveView(t)
		f.addWatched(t.Name)
		return t, ts.Alias
	}
}

// resolveProjection expands a SELECT's result-column list into the
// statement's output row, handling `*`, `t.*`, and aliased expressions.
func (f *infer) resolveProjection(env *resolve.Environment, columns []ast.ResultColumn, selSpan srcmap.Span) []OutputColumn {
	var out []OutputColumn
	anon := 0
	for _, rc := range columns {
		switch {
		case rc.Star && rc.StarTable == "":
			for _, b := range env.LocalBindings() {
				out = append(out, bindingColumns(b)...)
			}
		case rc.Star:
			b, ok := env.LookupAlias(rc.StarTable)
			if !ok {
				f.c.Bag.Errorf(f.c.File, selSpan, "unknown table %q in projection", rc.StarTable)
				continue
			}
			out = append(out, bindingColumns(b)...)
		default:
			t := f.inferExpr(env, rc.Expr)
			name := rc.Alias
			if name == "" {
				name = exprDisplayName(rc.Expr)
			}
			if name == "" {
				anon++
				name = syntheticColumnName(anon)
			}
			out = append(out, OutputColumn{Name: name, Type: t})
		}
	}
	return out
}

func bindingColumns(b resolve.TableBinding) []OutputColumn {
	out := make([]OutputColumn, 0, len(b.Table.Columns))
	for _, c := range b.Table.Columns {
		t := c.Type
		if b.IsOptional {
			t = types.NewOptional(t)
		}
		out = append(out, OutputColumn{Name: c.Name, Type: t})
	}
	return out
}

// exprDisplayName derives an unaliased result column's name the way SQLite
// does for the simple cases: a bare column keeps its name, a bare function
// call keeps the function's name. Anything else is anonymous.
func exprDisplayName(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Column:
		return n.Name
	case *ast.Function:
		return n.Name
	default:
		return ""
	}
}

func syntheticColumnName(n int) string {
	digits := "0123456789"
	if n < 10 {
		return "column" + string(digits[n])
	}
	out := []byte{}
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return "column" + string(out)
}

func isLimitOne(limit ast.Expr) bool {
	lit, ok := limit.(*ast.Literal)
	return ok && lit.Kind == ast.LiteralInt && lit.Text == "1"
}

func containsAggregate(columns []ast.ResultColumn) bool {
	found := false
	for _, rc := range columns {
		ast.WalkExpr(rc.Expr, func(e ast.Expr) {
			if found {
				return
			}
			fn, ok := e.(*ast.Function)
			if !ok {
				return
			}
			if entry, ok := builtins.Lookup(fn.Name); ok && entry.Aggregate {
				found = true
			}
		})
		if found {
			break
		}
	}
	return found
}
