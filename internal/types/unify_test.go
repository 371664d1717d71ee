package types

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

func TestUnifyTwoVarsShareBoundType(t *testing.T) {
	bag := diag.NewBag()
	u := NewUnifier(bag, "fixture.sql")
	a, b := u.Fresh(), u.Fresh()
	u.Unify(a, NewInteger(), srcmap.Span{})
	u.Unify(a, b, srcmap.Span{})
	if got := u.Resolve(b); got.Kind != Integer {
		t.Errorf("Resolve(b) = %s, want integer after unifying with a bound-integer var", got)
	}
}

func TestUnifyVarWithConcreteThenWidens(t *testing.T) {
	bag := diag.NewBag()
	u := NewUnifier(bag, "fixture.sql")
	v := u.Fresh()
	u.Unify(v, NewInteger(), srcmap.Span{})
	u.Unify(v, NewReal(), srcmap.Span{})
	if got := u.Resolve(v); got.Kind != Real {
		t.Errorf("Resolve(v) = %s, want real after unifying integer then real", got)
	}
	if bag.HasErrors() {
		t.Errorf("integer/real widening should not be a conflict: %+v", bag.All())
	}
}

func TestUnifyConflictingConcreteTypesReportsDiagnosticButContinues(t *testing.T) {
	bag := diag.NewBag()
	u := NewUnifier(bag, "fixture.sql")
	v := u.Fresh()
	u.Unify(v, NewInteger(), srcmap.Span{})
	u.Unify(v, NewBlob(), srcmap.Span{})
	if !bag.HasErrors() {
		t.Errorf("expected a diagnostic for incompatible integer/blob unification")
	}
	// inference must still proceed with a best-effort resolved type.
	if got := u.Resolve(v); got == nil {
		t.Errorf("Resolve(v) = nil, want a best-effort fallback type")
	}
}

func TestUnifyUnboundVarDefaultsToInteger(t *testing.T) {
	u := NewUnifier(diag.NewBag(), "fixture.sql")
	v := u.Fresh()
	if got := u.Resolve(v); got.Kind != Integer {
		t.Errorf("Resolve(unbound var) = %s, want integer default", got)
	}
}

func TestUnifyResolvesNestedRowFields(t *testing.T) {
	u := NewUnifier(diag.NewBag(), "fixture.sql")
	v := u.Fresh()
	u.Unify(v, NewText(), srcmap.Span{})
	row := NewRowNamed([]Field{{Name: "name", Type: v}})
	resolved := u.Resolve(row)
	if resolved.Kind != Row || resolved.Fields[0].Type.Kind != Text {
		t.Errorf("Resolve(row{name: var}) = %s, want row(named(name:text))", resolved)
	}
}

func TestUnifyOptionalPropagatesIntoUnifiedVar(t *testing.T) {
	u := NewUnifier(diag.NewBag(), "fixture.sql")
	v := u.Fresh()
	u.Unify(v, NewOptional(NewInteger()), srcmap.Span{})
	u.Unify(v, NewInteger(), srcmap.Span{})
	got := u.Resolve(v)
	if !got.IsOptional() || got.Unwrap().Kind != Integer {
		t.Errorf("Resolve(v) = %s, want optional(integer): null propagation from one occurrence must survive a later concrete occurrence", got)
	}
}
