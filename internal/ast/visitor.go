package ast

// WalkExpr calls visit on e and every expression reachable from it, in a
// fixed pre-order. Dispatch is a type switch rather than a virtual Accept
// method. Go does not check a type switch for exhaustiveness, so a new Expr
// variant without a case here still compiles; the switch has no panicking
// default, and an unrecognized variant is simply treated as a leaf.
// Keeping dispatch as one switch, rather than scattering an
// Accept method across every node type, is what the design favors for a
// closed, rarely-changing node set.
func WalkExpr(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *Literal, *BindParameter, *Column, *Invalid:
		// leaves
	case *Prefix:
		WalkExpr(n.RHS, visit)
	case *Infix:
		WalkExpr(n.LHS, visit)
		WalkExpr(n.RHS, visit)
		WalkExpr(n.Escape, visit)
	case *Postfix:
		WalkExpr(n.LHS, visit)
	case *Between:
		WalkExpr(n.Value, visit)
		WalkExpr(n.Lo, visit)
		WalkExpr(n.Hi, visit)
	case *Function:
		for _, a := range n.Args {
			WalkExpr(a, visit)
		}
		WalkExpr(n.Filter, visit)
	case *Cast:
		WalkExpr(n.Expr, visit)
	case *CaseWhenThen:
		WalkExpr(n.Scrutinee, visit)
		for _, arm := range n.Arms {
			WalkExpr(arm.When, visit)
			WalkExpr(arm.Then, visit)
		}
		WalkExpr(n.Else, visit)
	case *Grouped:
		for _, ge := range n.Exprs {
			WalkExpr(ge, visit)
		}
	case *SubquerySelect:
		WalkSelect(n.Select, visit)
	case *Exists:
		WalkSelect(n.Select, visit)
	}
}

// WalkSelect applies WalkExpr to every expression reachable from a Select,
// including its CTEs, result columns, FROM-clause joins and subqueries, and
// any compound continuation.
func WalkSelect(s *Select, visit func(Expr)) {
	if s == nil {
		return
	}
	for _, cte := range s.CTEs {
		WalkSelect(cte.Select, visit)
	}
	for _, rc := range s.Columns {
		WalkExpr(rc.Expr, visit)
	}
	for _, ts := range s.From {
		WalkSelect(ts.Subquery, visit)
		if ts.Func != nil {
			WalkExpr(ts.Func, visit)
		}
		WalkExpr(ts.JoinOn, visit)
	}
	WalkExpr(s.Where, visit)
	for _, g := range s.GroupBy {
		WalkExpr(g, visit)
	}
	WalkExpr(s.Having, visit)
	for _, ot := range s.OrderBy {
		WalkExpr(ot.Expr, visit)
	}
	WalkExpr(s.Limit, visit)
	WalkExpr(s.Offset, visit)
	WalkSelect(s.CompoundOf, visit)
}

// WalkStmt applies visit to every expression reachable from any statement
// variant, letting a caller enumerate a statement's bind parameters and
// column references without type-asserting on the statement kind itself.
func WalkStmt(s Stmt, visit func(Expr)) {
	switch n := s.(type) {
	case *CreateTable:
		for _, c := range n.Columns {
			WalkExpr(c.Default, visit)
			WalkExpr(c.Generated, visit)
		}
	case *AlterTable:
		if n.NewColumn != nil {
			WalkExpr(n.NewColumn.Default, visit)
		}
	case *CreateIndex:
		WalkExpr(n.Where, visit)
	case *CreateView:
		WalkSelect(n.Select, visit)
	case *Select:
		WalkSelect(n, visit)
	case *Insert:
		for _, row := range n.Rows {
			for _, e := range row {
				WalkExpr(e, visit)
			}
		}
		WalkSelect(n.Select, visit)
		for _, sc := range n.UpsertDo {
			WalkExpr(sc.Value, visit)
		}
		for _, rc := range n.Returning {
			WalkExpr(rc.Expr, visit)
		}
	case *Update:
		for _, sc := range n.Set {
			WalkExpr(sc.Value, visit)
		}
		for _, ts := range n.From {
			WalkSelect(ts.Subquery, visit)
		}
		WalkExpr(n.Where, visit)
		for _, rc := range n.Returning {
			WalkExpr(rc.Expr, visit)
		}
	case *Delete:
		WalkExpr(n.Where, visit)
		for _, rc := range n.Returning {
			WalkExpr(rc.Expr, visit)
		}
	}
}
