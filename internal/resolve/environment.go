// Package resolve implements lexical name resolution: a stack of scopes
// binding table aliases to schema tables, used by the type checker to turn
// a bare column reference or `schema.table.column` chain into a concrete
// type.
package resolve

import (
	"github.com/wickwirew/sqlsig/internal/schema"
	"github.com/wickwirew/sqlsig/internal/types"
)

// ResultKind classifies the outcome of resolving a name.
type ResultKind int

const (
	Success ResultKind = iota
	Ambiguous
	TableDoesNotExist
	ColumnDoesNotExist
)

// Result carries the resolved type alongside its outcome kind. Type is only
// meaningful when Kind is Success or Ambiguous (the ambiguous case still
// reports one of the candidate types so the checker can keep going).
type Result struct {
	Kind ResultKind
	Type *types.Type
	Name string
}

// TableBinding is one alias bound into scope, pointing at the schema table
// it names. isOptional propagates to every column the binding exposes when
// it sits on the nullable side of an outer join.
type TableBinding struct {
	Alias      string
	Table      *schema.Table
	IsOptional bool
	IsLocal    bool
}

// Environment is a scoped stack of table bindings. Scopes nest (a subquery
// gets a child Environment); resolution walks outward from the innermost
// scope until a match is found.
type Environment struct {
	parent   *Environment
	bindings []TableBinding

	// merged holds columns produced by a JOIN ... USING(...) or NATURAL
	// JOIN post-import pass: one exposed binding per shared column name,
	// shadowing the per-side ambiguity that would otherwise result from
	// both joined tables exposing a column of the same name.
	merged map[string]*types.Type
}

// New returns a root environment with no parent scope.
func New() *Environment {
	return &Environment{}
}

// Child opens a nested scope (used for subqueries and CTE bodies).
func (e *Environment) Child() *Environment {
	return &Environment{parent: e}
}

// Import binds a table under an alias (or its own name if alias is empty)
// into the current scope.
func (e *Environment) Import(table *schema.Table, alias string, isOptional bool) {
	if alias == "" {
		alias = table.Name
	}
	e.bindings = append(e.bindings, TableBinding{Alias: alias, Table: table, IsOptional: isOptional, IsLocal: true})
}

// ImportNonLocals copies every binding from other into e, marked non-local,
// so a CTE's own scope can be exported into the query that references it
// without that query re-resolving the CTE's internals as if they were its
// own FROM-clause entries.
func (e *Environment) ImportNonLocals(other *Environment) {
	for _, b := range other.bindings {
		b.IsLocal = false
		e.bindings = append(e.bindings, b)
	}
}

// Bindings returns every binding visible in this scope, innermost first,
// walking out through parents.
func (e *Environment) Bindings() []TableBinding {
	var out []TableBinding
	for env := e; env != nil; env = env.parent {
		out = append(out, env.bindings...)
	}
	return out
}

// LocalBindings returns only the bindings imported directly into this
// scope, without walking into parents. `*` and `t.*` expansion use this so
// a correlated subquery's bare `*` expands to its own FROM clause, not the
// outer query's.
func (e *Environment) LocalBindings() []TableBinding {
	return e.bindings
}

// MarkAllOptional flags every binding currently in this scope as optional,
// used when a RIGHT or FULL join makes the previously-imported side
// nullable.
func (e *Environment) MarkAllOptional() {
	for i := range e.bindings {
		e.bindings[i].IsOptional = true
	}
}

func columnType(b TableBinding, c schema.Column) *types.Type {
	if b.IsOptional {
		return types.NewOptional(c.Type)
	}
	return c.Type
}

// ResolveQualified resolves table.column against the first binding whose
// alias is tableAlias, innermost scope first. A schema qualifier is not
// taken into account.
func (e *Environment) ResolveQualified(tableAlias, column string) Result {
	for env := e; env != nil; env = env.parent {
		for _, b := range env.bindings {
			if b.Alias != tableAlias {
				continue
			}
			c, ok := b.Table.Column(column)
			if !ok {
				return Result{Kind: ColumnDoesNotExist, Name: column}
			}
			return Result{Kind: Success, Type: columnType(b, c), Name: column}
		}
	}
	return Result{Kind: TableDoesNotExist, Name: tableAlias}
}

// ResolveUnqualified resolves a bare column name against every binding
// visible in scope. Exactly one match is success; more than one is
// ambiguous; zero is columnDoesNotExist.
func (e *Environment) ResolveUnqualified(column string) Result {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.merged[column]; ok {
			return Result{Kind: Success, Type: t, Name: column}
		}
	}
	var found *types.Type
	count := 0
	for env := e; env != nil; env = env.parent {
		for _, b := range env.bindings {
			c, ok := b.Table.Column(column)
			if !ok {
				continue
			}
			count++
			t := columnType(b, c)
			if found == nil {
				found = t
			}
		}
	}
	switch count {
	case 0:
		return Result{Kind: ColumnDoesNotExist, Name: column}
	case 1:
		return Result{Kind: Success, Type: found, Name: column}
	default:
		return Result{Kind: Ambiguous, Type: found, Name: column}
	}
}

// LookupAlias finds the binding for an alias without resolving a column,
// used for `t.*` expansion.
func (e *Environment) LookupAlias(alias string) (TableBinding, bool) {
	for env := e; env != nil; env = env.parent {
		for _, b := range env.bindings {
			if b.Alias == alias {
				return b, true
			}
		}
	}
	return TableBinding{}, false
}
