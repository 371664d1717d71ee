package types

import (
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// Unifier is a disjoint-set (union-find) solver over type variables,
// augmented so each representative may carry a bound concrete type. Two
// variables unified with each other merge their sets; a variable unified
// with a concrete type binds its representative to that type, coercing via
// Lub if the representative was already bound.
type Unifier struct {
	parent []int
	bound  []*Type
	bag    *diag.Bag
	file   string
}

// NewUnifier constructs a solver that reports coercion conflicts to bag,
// attributing them to file.
func NewUnifier(bag *diag.Bag, file string) *Unifier {
	return &Unifier{bag: bag, file: file}
}

// Fresh allocates a new, as-yet-unbound type variable.
func (u *Unifier) Fresh() *Type {
	id := len(u.parent)
	u.parent = append(u.parent, id)
	u.bound = append(u.bound, nil)
	return NewVar(id)
}

func (u *Unifier) find(id int) int {
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

// Unify merges a and b. Either or both may be concrete types or Vars; a
// concrete/concrete mismatch with no clean coercion emits a diagnostic at
// span but never aborts. The lub result still becomes the bound type so
// downstream inference continues.
func (u *Unifier) Unify(a, b *Type, span srcmap.Span) {
	if a == nil || b == nil {
		return
	}
	if a.Kind == Var && b.Kind == Var {
		ra, rb := u.find(a.VarID), u.find(b.VarID)
		if ra == rb {
			return
		}
		ba, bb := u.bound[ra], u.bound[rb]
		u.parent[rb] = ra
		switch {
		case ba == nil:
			u.bound[ra] = bb
		case bb == nil:
			u.bound[ra] = ba
		default:
			merged, ok := Lub(ba, bb)
			if !ok {
				u.conflict(span, ba, bb)
			}
			u.bound[ra] = merged
		}
		return
	}
	if a.Kind == Var {
		u.bindVar(a.VarID, b, span)
		return
	}
	if b.Kind == Var {
		u.bindVar(b.VarID, a, span)
		return
	}
	if _, ok := Lub(a, b); !ok {
		u.conflict(span, a, b)
	}
}

func (u *Unifier) bindVar(id int, t *Type, span srcmap.Span) {
	r := u.find(id)
	if existing := u.bound[r]; existing != nil {
		merged, ok := Lub(existing, t)
		if !ok {
			u.conflict(span, existing, t)
		}
		u.bound[r] = merged
		return
	}
	u.bound[r] = t
}

func (u *Unifier) conflict(span srcmap.Span, a, b *Type) {
	if u.bag == nil {
		return
	}
	u.bag.Errorf(u.file, span, "incompatible types %s and %s", a, b)
}

// Resolve walks t, replacing every Var with its bound representative
// (recursively resolving that representative too, since a bound type may
// itself reference other rows containing vars). An unbound Var defaults to
// integer, SQLite's affinity of last resort.
func (u *Unifier) Resolve(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case Var:
		r := u.find(t.VarID)
		bound := u.bound[r]
		if bound == nil {
			return NewInteger()
		}
		if bound.Kind == Var && u.find(bound.VarID) == r {
			return NewInteger() // self-referential binding, defensive fallback
		}
		return u.Resolve(bound)
	case Optional:
		return NewOptional(u.Resolve(t.Inner))
	case Row:
		switch t.Shape {
		case RowNamed:
			fields := make([]Field, len(t.Fields))
			for i, f := range t.Fields {
				fields[i] = Field{Name: f.Name, Type: u.Resolve(f.Type)}
			}
			return NewRowNamed(fields)
		case RowUnnamed:
			elems := make([]*Type, len(t.Elements))
			for i, e := range t.Elements {
				elems[i] = u.Resolve(e)
			}
			return NewRowUnnamed(elems)
		default:
			return NewRowUnknown(u.Resolve(t.Elem))
		}
	default:
		return t
	}
}
