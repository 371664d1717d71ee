package resolve

import "github.com/wickwirew/sqlsig/internal/types"

// MergeUsing runs the post-import pass for a JOIN ... USING(cols) or a
// NATURAL join: for each shared column name it computes one joined type
// (the lub of both sides, optional if either side is on a nullable join
// branch) and exposes it as a single unqualified binding, so resolving the
// bare column name afterward returns success instead of ambiguous.
func (e *Environment) MergeUsing(left, right TableBinding, columns []string) {
	if e.merged == nil {
		e.merged = map[string]*types.Type{}
	}
	for _, col := range columns {
		lt, lok := left.Table.Column(col)
		rt, rok := right.Table.Column(col)
		if !lok || !rok {
			continue
		}
		ltype := lt.Type
		if left.IsOptional {
			ltype = types.NewOptional(ltype)
		}
		rtype := rt.Type
		if right.IsOptional {
			rtype = types.NewOptional(rtype)
		}
		joined, ok := types.Lub(ltype, rtype)
		if !ok {
			joined = types.NewOptional(joined.Unwrap())
		}
		e.merged[col] = joined
	}
}

// NaturalJoinColumns returns the column names shared by both sides of a
// NATURAL join, the implicit USING list SQLite derives from matching names.
func NaturalJoinColumns(left, right *TableBinding) []string {
	var shared []string
	for _, lc := range left.Table.Columns {
		if _, ok := right.Table.Column(lc.Name); ok {
			shared = append(shared, lc.Name)
		}
	}
	return shared
}
