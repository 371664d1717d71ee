package checker

import (
	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/resolve"
	"github.com/wickwirew/sqlsig/internal/schema"
)

func (f *infer) inferInsert(n *ast.Insert) *Signature {
	tbl, ok := f.c.Schema.Lookup(schema.QualifiedName{Name: n.Table})
	if !ok {
		f.c.Bag.Errorf(f.c.File, n.Span(), "unknown table %q", n.Table)
		tbl = &schema.Table{Name: n.Table, ColumnIndex: map[string]int{}}
	}
	f.addWrites(tbl.Name)

	env := resolve.New()
	env.Import(tbl, n.Table, false)

	cols := n.Columns
	if len(cols) == 0 {
		cols = columnNamesOf(tbl)
	}

	switch {
	case n.Select != nil:
		sig := f.inferSelect(resolve.New(), n.Select)
		for i, oc := range sig.Output {
			if i >= len(cols) {
				break
			}
			if c, ok := tbl.Column(cols[i]); ok {
				f.u.Unify(oc.Type, c.Type, n.Span())
			}
		}
	default:
		for _, row := range n.Rows {
			for i, v := range row {
				vt := f.inferExpr(env, v)
				if i >= len(cols) {
					continue
				}
				if c, ok := tbl.Column(cols[i]); ok {
					f.u.Unify(vt, c.Type, v.Span())
				} else {
					f.c.Bag.Errorf(f.c.File, v.Span(), "unknown column %q on table %q", cols[i], n.Table)
				}
			}
		}
	}

	for _, sc := range n.UpsertDo {
		vt := f.inferExpr(env, sc.Value)
		if c, ok := tbl.Column(sc.Column); ok {
			f.u.Unify(vt, c.Type, sc.Value.Span())
		}
	}

	output := f.resolveProjection(env, n.Returning, n.Span())
	card := CardinalityNone
	if len(n.Returning) > 0 {
		card = CardinalityMany
	}
	return f.finish(output, card)
}

func (f *infer) inferUpdate(n *ast.Update) *Signature {
	tbl, ok := f.c.Schema.Lookup(schema.QualifiedName{Name: n.Table})
	if !ok {
		f.c.Bag.Errorf(f.c.File, n.Span(), "unknown table %q", n.Table)
		tbl = &schema.Table{Name: n.Table, ColumnIndex: map[string]int{}}
	}
	f.addWrites(tbl.Name)
	env := resolve.New().Child()
	env.Import(tbl, n.Table, false)
	if len(n.From) > 0 {
		f.extendFromEnv(env, n.From, n.Span())
	}

	for _, sc := range n.Set {
		vt := f.inferExpr(env, sc.Value)
		if c, ok := tbl.Column(sc.Column); ok {
			f.u.Unify(vt, c.Type, sc.Value.Span())
		} else {
			f.c.Bag.Errorf(f.c.File, sc.Value.Span(), "unknown column %q on table %q", sc.Column, n.Table)
		}
	}
	if n.Where != nil {
		f.inferExpr(env, n.Where)
	}

	output := f.resolveProjection(env, n.Returning, n.Span())
	card := CardinalityNone
	if len(n.Returning) > 0 {
		card = CardinalityMany
	}
	return f.finish(output, card)
}

func (f *infer) inferDelete(n *ast.Delete) *Signature {
	tbl, ok := f.c.Schema.Lookup(schema.QualifiedName{Name: n.Table})
	if !ok {
		f.c.Bag.Errorf(f.c.File, n.Span(), "unknown table %q", n.Table)
		tbl = &schema.Table{Name: n.Table, ColumnIndex: map[string]int{}}
	}
	f.addWrites(tbl.Name)
	env := resolve.New().Child()
	env.Import(tbl, n.Table, false)
	if n.Where != nil {
		f.inferExpr(env, n.Where)
	}

	output := f.resolveProjection(env, n.Returning, n.Span())
	card := CardinalityNone
	if len(n.Returning) > 0 {
		card = CardinalityMany
	}
	return f.finish(output, card)
}
