// Package types implements the closed type lattice the checker infers over:
// integer, real, text, blob, any, bool, null, optional(T), and row(...).
// Affinity coercion (lub) and unification live alongside it in this package
// since both operate directly on the lattice's invariants.
package types

import "strings"

// Kind tags which alternative of the closed Type sum a value is.
type Kind int

const (
	Integer Kind = iota
	Real
	Text
	Blob
	Any
	Bool
	Null
	Optional
	Row
	// Var is a type variable awaiting unification; never appears in a
	// resolved signature handed back to a caller.
	Var
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Text:
		return "text"
	case Blob:
		return "blob"
	case Any:
		return "any"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Optional:
		return "optional"
	case Row:
		return "row"
	case Var:
		return "var"
	default:
		return "?"
	}
}

// RowShape distinguishes a named projection (SELECT a, b AS x), an unnamed
// tuple (a parenthesized list), and an as-yet-unresolved homogeneous row
// whose element type is known but whose arity is not (the right side of
// `IN :named_param`).
type RowShape int

const (
	RowNamed RowShape = iota
	RowUnnamed
	RowUnknown
)

// Field is one named column of a RowNamed shape, kept in declaration order.
type Field struct {
	Name string
	Type *Type
}

// Type is the single representation for every member of the lattice. Only
// the fields relevant to Kind are meaningful; it is not a pointer-heavy
// interface hierarchy because the lattice is closed and small enough that a
// tagged struct is both clearer and cheaper to copy than an interface sum.
type Type struct {
	Kind Kind

	// Optional
	Inner *Type

	// Row
	Shape    RowShape
	Fields   []Field // RowNamed
	Elements []*Type // RowUnnamed
	Elem     *Type   // RowUnknown

	// Var
	VarID int

	// CustomTag carries a user-declared `AS <tag>` annotation from a column's
	// declared type; it rides alongside Kind without affecting unification.
	CustomTag string
}

func NewInteger() *Type { return &Type{Kind: Integer} }
func NewReal() *Type    { return &Type{Kind: Real} }
func NewText() *Type    { return &Type{Kind: Text} }
func NewBlob() *Type    { return &Type{Kind: Blob} }
func NewAny() *Type     { return &Type{Kind: Any} }
func NewBool() *Type    { return &Type{Kind: Bool} }
func NewNull() *Type    { return &Type{Kind: Null} }

// NewOptional wraps t in optional(t), collapsing per the lattice's
// invariants: optional(optional(T)) = optional(T), optional(null) = null.
func NewOptional(t *Type) *Type {
	if t == nil {
		return &Type{Kind: Null}
	}
	if t.Kind == Null {
		return t
	}
	if t.Kind == Optional {
		return t
	}
	return &Type{Kind: Optional, Inner: t}
}

func NewRowNamed(fields []Field) *Type {
	return &Type{Kind: Row, Shape: RowNamed, Fields: fields}
}

func NewRowUnnamed(elems []*Type) *Type {
	return &Type{Kind: Row, Shape: RowUnnamed, Elements: elems}
}

func NewRowUnknown(elem *Type) *Type {
	return &Type{Kind: Row, Shape: RowUnknown, Elem: elem}
}

func NewVar(id int) *Type {
	return &Type{Kind: Var, VarID: id}
}

// IsOptional reports whether t is optional(_).
func (t *Type) IsOptional() bool {
	return t != nil && t.Kind == Optional
}

// Unwrap returns the non-optional type underneath an optional(T), or t
// itself if t is not optional.
func (t *Type) Unwrap() *Type {
	if t == nil {
		return t
	}
	if t.Kind == Optional {
		return t.Inner
	}
	return t
}

// MakeOptional rewraps t as optional(t.Unwrap()), a no-op if t is already
// optional, applied when null-propagation needs to force optionality onto
// an already-concrete type.
func MakeOptional(t *Type) *Type {
	return NewOptional(t.Unwrap())
}

// IsNumeric reports whether t (looking through optional) is integer or real.
func (t *Type) IsNumeric() bool {
	u := t.Unwrap()
	return u != nil && (u.Kind == Integer || u.Kind == Real)
}

// Equal reports structural equality, looking through Var by identity only
// (two distinct Vars are never Equal even if eventually unified to the same
// representative; callers needing that must resolve through a Unifier
// first).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Optional:
		return Equal(a.Inner, b.Inner)
	case Var:
		return a.VarID == b.VarID
	case Row:
		if a.Shape != b.Shape {
			return false
		}
		switch a.Shape {
		case RowNamed:
			if len(a.Fields) != len(b.Fields) {
				return false
			}
			for i := range a.Fields {
				if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
					return false
				}
			}
			return true
		case RowUnnamed:
			if len(a.Elements) != len(b.Elements) {
				return false
			}
			for i := range a.Elements {
				if !Equal(a.Elements[i], b.Elements[i]) {
					return false
				}
			}
			return true
		default: // RowUnknown
			return Equal(a.Elem, b.Elem)
		}
	default:
		return true
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Optional:
		return "optional(" + t.Inner.String() + ")"
	case Var:
		return "τ"
	case Row:
		switch t.Shape {
		case RowNamed:
			parts := make([]string, len(t.Fields))
			for i, f := range t.Fields {
				parts[i] = f.Name + ":" + f.Type.String()
			}
			return "row(named(" + strings.Join(parts, ", ") + "))"
		case RowUnnamed:
			parts := make([]string, len(t.Elements))
			for i, e := range t.Elements {
				parts[i] = e.String()
			}
			return "row(unnamed(" + strings.Join(parts, ", ") + "))"
		default:
			return "row(unknown(" + t.Elem.String() + "))"
		}
	default:
		if t.CustomTag != "" {
			return t.Kind.String() + "<" + t.CustomTag + ">"
		}
		return t.Kind.String()
	}
}
