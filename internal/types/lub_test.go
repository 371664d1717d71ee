package types

import "testing"

func TestNewOptionalCollapsesNullAndNestedOptional(t *testing.T) {
	if got := NewOptional(nil); got.Kind != Null {
		t.Errorf("NewOptional(nil) = %s, want null", got)
	}
	if got := NewOptional(NewNull()); got.Kind != Null {
		t.Errorf("NewOptional(null) = %s, want null", got)
	}
	nested := NewOptional(NewOptional(NewInteger()))
	if nested.Kind != Optional || nested.Inner.Kind != Integer {
		t.Errorf("NewOptional(optional(integer)) = %s, want optional(integer)", nested)
	}
}

func TestUnwrapAndMakeOptional(t *testing.T) {
	plain := NewInteger()
	if got := plain.Unwrap(); got != plain {
		t.Errorf("Unwrap of a non-optional should return itself")
	}
	opt := NewOptional(NewText())
	if got := opt.Unwrap(); got.Kind != Text {
		t.Errorf("Unwrap(optional(text)) = %s, want text", got)
	}
	if got := MakeOptional(plain); !got.IsOptional() || got.Inner.Kind != Integer {
		t.Errorf("MakeOptional(integer) = %s, want optional(integer)", got)
	}
	if got := MakeOptional(opt); got.Inner.Kind != Text {
		t.Errorf("MakeOptional is not idempotent on an already-optional type: %s", got)
	}
}

func TestEqualLooksThroughOptionalButNotVarIdentity(t *testing.T) {
	if !Equal(NewOptional(NewInteger()), NewOptional(NewInteger())) {
		t.Errorf("structurally identical optionals should be Equal")
	}
	if Equal(NewVar(1), NewVar(2)) {
		t.Errorf("distinct Vars must never be Equal")
	}
	if !Equal(NewVar(1), NewVar(1)) {
		t.Errorf("a Var should be Equal to itself by id")
	}
}

func TestEqualRowShapes(t *testing.T) {
	a := NewRowNamed([]Field{{Name: "id", Type: NewInteger()}, {Name: "name", Type: NewText()}})
	b := NewRowNamed([]Field{{Name: "id", Type: NewInteger()}, {Name: "name", Type: NewText()}})
	c := NewRowNamed([]Field{{Name: "id", Type: NewInteger()}})
	if !Equal(a, b) {
		t.Errorf("identical named rows should be Equal")
	}
	if Equal(a, c) {
		t.Errorf("rows with differing field counts must not be Equal")
	}
}

func TestLubNullWidensToOptional(t *testing.T) {
	got, ok := Lub(NewNull(), NewInteger())
	if !ok || !got.IsOptional() || got.Unwrap().Kind != Integer {
		t.Errorf("Lub(null, integer) = %s (ok=%v), want optional(integer), true", got, ok)
	}
}

func TestLubIntegerRealWidensToReal(t *testing.T) {
	got, ok := Lub(NewInteger(), NewReal())
	if !ok || got.Kind != Real {
		t.Errorf("Lub(integer, real) = %s (ok=%v), want real, true", got, ok)
	}
}

func TestLubAnyAbsorbs(t *testing.T) {
	got, ok := Lub(NewAny(), NewText())
	if !ok || got.Kind != Text {
		t.Errorf("Lub(any, text) = %s (ok=%v), want text, true", got, ok)
	}
}

func TestLubBoolBehavesAsInteger(t *testing.T) {
	got, ok := Lub(NewBool(), NewInteger())
	if !ok || got.Kind != Integer {
		t.Errorf("Lub(bool, integer) = %s (ok=%v), want integer, true", got, ok)
	}
}

func TestLubCrossFamilyIsLossyButProducesText(t *testing.T) {
	got, ok := Lub(NewInteger(), NewText())
	if ok {
		t.Errorf("Lub(integer, text) should be flagged lossy (ok=false)")
	}
	if got.Kind != Text {
		t.Errorf("Lub(integer, text) = %s, want text even though lossy", got)
	}
}

func TestLubOptionalPropagatesThroughInner(t *testing.T) {
	got, ok := Lub(NewOptional(NewInteger()), NewReal())
	if !ok || !got.IsOptional() || got.Unwrap().Kind != Real {
		t.Errorf("Lub(optional(integer), real) = %s (ok=%v), want optional(real), true", got, ok)
	}
}

func TestLubAllEmptyIsAny(t *testing.T) {
	got, ok := LubAll(nil)
	if !ok || got.Kind != Any {
		t.Errorf("LubAll(nil) = %s (ok=%v), want any, true", got, ok)
	}
}

func TestLubAllFoldsAcrossMixedNumericTypes(t *testing.T) {
	got, ok := LubAll([]*Type{NewInteger(), NewInteger(), NewReal()})
	if !ok || got.Kind != Real {
		t.Errorf("LubAll([integer, integer, real]) = %s (ok=%v), want real, true", got, ok)
	}
}
