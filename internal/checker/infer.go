package checker

import (
	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/builtins"
	"github.com/wickwirew/sqlsig/internal/resolve"
	"github.com/wickwirew/sqlsig/internal/schema"
	"github.com/wickwirew/sqlsig/internal/types"
)

// inferExpr implements pass 1 (constraint generation) for a single
// expression node, recursing into its children and returning the type (a
// concrete Type or a Var standing in for one) assigned to it.
func (f *infer) inferExpr(env *resolve.Environment, e ast.Expr) *types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		return f.inferLiteral(n)
	case *ast.BindParameter:
		return f.paramVar(n)
	case *ast.Column:
		return f.inferColumn(env, n)
	case *ast.Prefix:
		return f.inferPrefix(env, n)
	case *ast.Infix:
		return f.inferInfix(env, n)
	case *ast.Postfix:
		return f.inferPostfix(env, n)
	case *ast.Between:
		valueT := f.inferExpr(env, n.Value)
		loT := f.inferExpr(env, n.Lo)
		hiT := f.inferExpr(env, n.Hi)
		f.unifyAll(n.Span(), valueT, loT, hiT)
		return wrapIfOptional(types.NewInteger(), valueT, loT, hiT)
	case *ast.Function:
		return f.inferFunction(env, n)
	case *ast.Cast:
		// CAST changes the affinity, not the nullability: CAST(NULL AS TEXT)
		// is still NULL, so an optional operand yields an optional result.
		exprT := f.inferExpr(env, n.Expr)
		return wrapIfOptional(schema.AffinityOf(n.Type), exprT)
	case *ast.CaseWhenThen:
		return f.inferCase(env, n)
	case *ast.Grouped:
		if len(n.Exprs) == 1 {
			return f.inferExpr(env, n.Exprs[0])
		}
		elems := make([]*types.Type, len(n.Exprs))
		for i, ge := range n.Exprs {
			elems[i] = f.inferExpr(env, ge)
		}
		return types.NewRowUnnamed(elems)
	case *ast.SubquerySelect:
		sig := f.inferSelect(env, n.Select)
		if len(sig.Output) != 1 {
			f.c.Bag.Errorf(f.c.File, n.Span(), "subquery expression must return exactly one column, got %d", len(sig.Output))
			return types.NewAny()
		}
		return types.NewOptional(sig.Output[0].Type)
	case *ast.Exists:
		f.inferSelect(env, n.Select)
		return types.NewInteger()
	case *ast.Invalid:
		return types.NewAny()
	default:
		return types.NewAny()
	}
}

func (f *infer) inferLiteral(n *ast.Literal) *types.Type {
	switch n.Kind {
	case ast.LiteralNull:
		return types.NewNull()
	case ast.LiteralInt, ast.LiteralHex:
		return types.NewInteger()
	case ast.LiteralDouble:
		return types.NewReal()
	case ast.LiteralString:
		return types.NewText()
	case ast.LiteralBlob:
		return types.NewBlob()
	case ast.LiteralBool:
		return types.NewBool()
	default:
		return types.NewAny()
	}
}

func (f *infer) inferColumn(env *resolve.Environment, n *ast.Column) *types.Type {
	var res resolve.Result
	if n.Table != "" {
		res = env.ResolveQualified(n.Table, n.Name)
	} else {
		res = env.ResolveUnqualified(n.Name)
	}
	switch res.Kind {
	case resolve.Success:
		return res.Type
	case resolve.Ambiguous:
		f.c.Bag.Errorf(f.c.File, n.Span(), "ambiguous column reference %q", n.Name)
		return res.Type
	case resolve.TableDoesNotExist:
		f.c.Bag.Errorf(f.c.File, n.Span(), "unknown table %q", n.Table)
		return f.u.Fresh()
	default: // ColumnDoesNotExist
		f.c.Bag.Errorf(f.c.File, n.Span(), "unknown column %q", n.Name)
		return f.u.Fresh()
	}
}

func (f *infer) inferPrefix(env *resolve.Environment, n *ast.Prefix) *types.Type {
	rhsT := f.inferExpr(env, n.RHS)
	switch n.Op {
	case ast.OpNot:
		return wrapIfOptional(types.NewInteger(), rhsT)
	default: // OpBitNot, OpUnaryPlus, OpUnaryNeg
		return rhsT
	}
}

func (f *infer) inferPostfix(env *resolve.Environment, n *ast.Postfix) *types.Type {
	lhsT := f.inferExpr(env, n.LHS)
	switch n.Op {
	case ast.OpIsNull, ast.OpNotNull:
		return types.NewInteger()
	default: // OpCollate
		return lhsT
	}
}

func (f *infer) inferInfix(env *resolve.Environment, n *ast.Infix) *types.Type {
	lhsT := f.inferExpr(env, n.LHS)
	rhsT := f.inferExpr(env, n.RHS)
	if n.Escape != nil {
		f.inferExpr(env, n.Escape)
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
		ast.OpBitAnd, ast.OpBitOr, ast.OpShiftLeft, ast.OpShiftRight:
		return f.unifyAll(n.Span(), lhsT, rhsT)

	case ast.OpConcat:
		return wrapIfOptional(types.NewText(), lhsT, rhsT)

	case ast.OpArrow, ast.OpArrowArrow:
		return wrapIfOptional(types.NewAny(), lhsT, rhsT)

	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe,
		ast.OpEq, ast.OpEqEq, ast.OpNotEq, ast.OpNotEq2:
		f.hintParamName(n.LHS, n.RHS)
		f.hintParamName(n.RHS, n.LHS)
		f.u.Unify(lhsT, rhsT, n.Span())
		return wrapIfOptional(types.NewInteger(), lhsT, rhsT)

	case ast.OpIs, ast.OpIsNot, ast.OpIsDistinctFrom, ast.OpIsNotDistinctFrom:
		f.hintParamName(n.LHS, n.RHS)
		f.hintParamName(n.RHS, n.LHS)
		f.u.Unify(lhsT, rhsT, n.Span())
		return types.NewInteger()

	case ast.OpAnd, ast.OpOr:
		return wrapIfOptional(types.NewInteger(), lhsT, rhsT)

	case ast.OpLike, ast.OpGlob, ast.OpMatch, ast.OpRegexp:
		return wrapIfOptional(types.NewInteger(), lhsT, rhsT)

	case ast.OpIn:
		return f.inferIn(env, n, lhsT)

	default:
		return types.NewInteger()
	}
}

// inferIn handles `value [NOT] IN (list | subquery | :param)`. A single
// bind parameter on the right is resolved to row(unknown(value_type)) so
// the emitter knows to splat a slice parameter rather than bind one scalar.
func (f *infer) inferIn(env *resolve.Environment, n *ast.Infix, valueT *types.Type) *types.Type {
	switch rhs := n.RHS.(type) {
	case *ast.Grouped:
		if len(rhs.Exprs) == 1 {
			if bp, ok := rhs.Exprs[0].(*ast.BindParameter); ok {
				pv := f.paramVar(bp)
				f.u.Unify(pv, types.NewRowUnknown(valueT), n.Span())
				return wrapIfOptional(types.NewInteger(), valueT)
			}
		}
		elemTypes := make([]*types.Type, 0, len(rhs.Exprs)+1)
		elemTypes = append(elemTypes, valueT)
		for _, ge := range rhs.Exprs {
			elemTypes = append(elemTypes, f.inferExpr(env, ge))
		}
		f.unifyAll(n.Span(), elemTypes...)
		return wrapIfOptional(types.NewInteger(), valueT)
	case *ast.BindParameter:
		pv := f.paramVar(rhs)
		f.u.Unify(pv, types.NewRowUnknown(valueT), n.Span())
		return wrapIfOptional(types.NewInteger(), valueT)
	default:
		listT := f.inferExpr(env, n.RHS)
		f.u.Unify(valueT, listT, n.Span())
		return wrapIfOptional(types.NewInteger(), valueT)
	}
}

func (f *infer) inferFunction(env *resolve.Environment, n *ast.Function) *types.Type {
	args := make([]*types.Type, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, f.inferExpr(env, a))
	}
	if n.Filter != nil {
		f.inferExpr(env, n.Filter)
	}
	entry, ok := builtins.Lookup(n.Name)
	if !ok {
		f.c.Bag.Warnf(f.c.File, n.Span(), "unknown function %q, assuming result type any", n.Name)
		return types.NewAny()
	}
	if n.Star {
		if !entry.AllowsStar {
			f.c.Bag.Errorf(f.c.File, n.Span(), "function %q does not accept *", n.Name)
		}
		return types.NewInteger()
	}
	if !entry.Arity.Matches(len(args)) {
		f.c.Bag.Errorf(f.c.File, n.Span(), "function %q called with %d arguments", n.Name, len(args))
		return types.NewAny()
	}
	return entry.Resolve(args)
}

func (f *infer) inferCase(env *resolve.Environment, n *ast.CaseWhenThen) *types.Type {
	var scrT *types.Type
	if n.Scrutinee != nil {
		scrT = f.inferExpr(env, n.Scrutinee)
	}
	branchTypes := make([]*types.Type, 0, len(n.Arms)+1)
	for _, arm := range n.Arms {
		whenT := f.inferExpr(env, arm.When)
		if scrT != nil {
			f.u.Unify(scrT, whenT, n.Span())
		}
		branchTypes = append(branchTypes, f.inferExpr(env, arm.Then))
	}
	if n.Else != nil {
		branchTypes = append(branchTypes, f.inferExpr(env, n.Else))
	} else {
		// No ELSE means the result is NULL for unmatched rows.
		branchTypes = append(branchTypes, types.NewNull())
	}
	return f.unifyAll(n.Span(), branchTypes...)
}
