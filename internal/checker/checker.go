package checker

import (
	"sort"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/resolve"
	"github.com/wickwirew/sqlsig/internal/schema"
	"github.com/wickwirew/sqlsig/internal/srcmap"
	"github.com/wickwirew/sqlsig/internal/types"
)

// Checker type-checks statements against a fixed Schema, reporting
// diagnostics to a shared Bag and producing a Signature per statement.
type Checker struct {
	Schema *schema.Schema
	Bag    *diag.Bag
	File   string
}

// New returns a checker bound to a schema snapshot and diagnostic sink.
func New(sch *schema.Schema, bag *diag.Bag, file string) *Checker {
	return &Checker{Schema: sch, Bag: bag, File: file}
}

// Check type-checks one statement and returns its Signature. DDL statements
// have no signature and return nil; the schema builder handles those.
func (c *Checker) Check(stmt ast.Stmt) *Signature {
	f := c.newInfer()
	switch n := stmt.(type) {
	case *ast.Select:
		return f.inferSelect(resolve.New(), n)
	case *ast.Insert:
		return f.inferInsert(n)
	case *ast.Update:
		return f.inferUpdate(n)
	case *ast.Delete:
		return f.inferDelete(n)
	default:
		return nil
	}
}

// infer holds the per-statement constraint-generation state: the unifier
// solving type variables, the bind-parameter var table, and the CTE table
// registry (kept separate from Environment so a WITH-bound name never
// participates in `*` expansion the way a FROM-clause binding does).
type infer struct {
	c             *Checker
	u             *types.Unifier
	paramVars     map[int]*types.Type
	paramName     map[int]string
	paramLocs     map[int][]srcmap.Span
	ctes          map[string]*schema.Table
	watchedTables map[string]bool
	writesTo      map[string]bool
	// paramOptional marks indices bound at least once through
	// sqlc.narg('name'), which always contributes optional(T) regardless of
	// the column it unifies with elsewhere in the statement.
	paramOptional map[int]bool
}

func (c *Checker) newInfer() *infer {
	return &infer{
		u:         types.NewUnifier(c.Bag, c.File),
		paramVars: map[int]*types.Type{},
		paramName: map[int]string{},
		paramLocs: map[int][]srcmap.Span{},
		c:         c,
	}
}

func (f *infer) paramVar(n *ast.BindParameter) *types.Type {
	f.paramLocs[n.Index] = append(f.paramLocs[n.Index], n.Span())
	if n.ParamKind == ast.ParamSQLCNarg {
		if f.paramOptional == nil {
			f.paramOptional = map[int]bool{}
		}
		f.paramOptional[n.Index] = true
	}
	if t, ok := f.paramVars[n.Index]; ok {
		return t
	}
	v := f.u.Fresh()
	f.paramVars[n.Index] = v
	if n.Name != "" {
		f.paramName[n.Index] = n.Name
	}
	return v
}

// hintParamName implements the "nearby column name" heuristic for naming
// an anonymous `?`/`?N` parameter: when one side of a binary expression is
// a bare column and the other an unnamed bind parameter, the column's name
// becomes the parameter's hint unless something more specific (an explicit
// `:name`) already claimed it.
func (f *infer) hintParamName(a, b ast.Expr) {
	col, ok := a.(*ast.Column)
	if !ok {
		return
	}
	bp, ok := b.(*ast.BindParameter)
	if !ok || bp.Name != "" {
		return
	}
	if _, exists := f.paramName[bp.Index]; !exists {
		f.paramName[bp.Index] = col.Name
	}
}

func (f *infer) addWatched(table string) {
	if f.watchedTables == nil {
		f.watchedTables = map[string]bool{}
	}
	f.watchedTables[table] = true
}

func (f *infer) addWrites(table string) {
	if f.writesTo == nil {
		f.writesTo = map[string]bool{}
	}
	f.writesTo[table] = true
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// unifyAll merges every type in ts into one fresh representative variable
// and returns it. Used wherever a family of expressions must agree on a
// single type: arithmetic operands, BETWEEN bounds, IN-list elements, CASE
// branches.
func (f *infer) unifyAll(span srcmap.Span, ts ...*types.Type) *types.Type {
	r := f.u.Fresh()
	for _, t := range ts {
		f.u.Unify(r, t, span)
	}
	return r
}

// wrapIfOptional returns optional(result) if any of the given operand types
// is immediately known (not a still-unresolved Var) to be optional(_). Null
// propagation is computed eagerly off the operand's surface Kind rather than
// deferred through the unifier: schema columns and literals already carry
// their real optionality by the time an operator node examines them, and a
// bind parameter contributes no optionality information of its own (nothing
// in the source says whether an eventual bound value will be NULL).
func wrapIfOptional(result *types.Type, operands ...*types.Type) *types.Type {
	for _, o := range operands {
		if o != nil && o.Kind == types.Optional {
			return types.NewOptional(result)
		}
	}
	return result
}

func (f *infer) resolveParams() []Param {
	indices := make([]int, 0, len(f.paramVars))
	for idx := range f.paramVars {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	out := make([]Param, 0, len(indices))
	for _, idx := range indices {
		typ := f.u.Resolve(f.paramVars[idx])
		if f.paramOptional[idx] && typ.Kind != types.Optional {
			typ = types.NewOptional(typ)
		}
		out = append(out, Param{
			Index:     idx,
			Name:      f.paramName[idx],
			Type:      typ,
			Locations: f.paramLocs[idx],
		})
	}
	return out
}

// finish fills in the parameter list, resolved output, watched/writesTo
// table sets, and cardinality for a completed statement check.
func (f *infer) finish(output []OutputColumn, card Cardinality) *Signature {
	return &Signature{
		Params:        f.resolveParams(),
		Output:        f.resolveOutput(output),
		Cardinality:   card,
		WatchedTables: sortedKeys(f.watchedTables),
		WritesTo:      sortedKeys(f.writesTo),
	}
}

func (f *infer) resolveOutput(cols []OutputColumn) []OutputColumn {
	for i := range cols {
		cols[i].Type = f.u.Resolve(cols[i].Type)
	}
	return cols
}

func columnNamesOf(t *schema.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func syntheticTable(name string, cols []OutputColumn) *schema.Table {
	t := &schema.Table{Name: name, ColumnIndex: map[string]int{}}
	for _, oc := range cols {
		t.Columns = append(t.Columns, schema.Column{Name: oc.Name, Type: oc.Type})
		if _, exists := t.ColumnIndex[oc.Name]; !exists {
			t.ColumnIndex[oc.Name] = len(t.Columns) - 1
		}
	}
	return t
}

// resolveView lazily type-checks a view's defining query the first time the
// view is referenced, memoizing the projected columns back onto the table
// so later references reuse the cached shape instead of re-checking it.
func (c *Checker) resolveView(t *schema.Table) {
	if t.Kind != schema.View || t.ViewSelect == nil || len(t.Columns) > 0 {
		return
	}
	sig := c.Check(t.ViewSelect)
	if sig == nil {
		return
	}
	t.ColumnIndex = map[string]int{}
	for _, oc := range sig.Output {
		t.Columns = append(t.Columns, schema.Column{Name: oc.Name, Type: oc.Type})
		if _, exists := t.ColumnIndex[oc.Name]; !exists {
			t.ColumnIndex[oc.Name] = len(t.Columns) - 1
		}
	}
}
