package types

// Lub computes the least upper bound of two concrete (non-Var) types under
// SQLite's affinity coercion rules. The returned bool is false when the
// combination required a lossy coercion the caller should surface as a
// diagnostic (e.g. integer widened against text); Lub still returns a best-
// effort result in that case so analysis can continue.
func Lub(a, b *Type) (*Type, bool) {
	if a == nil {
		return b, true
	}
	if b == nil {
		return a, true
	}

	aOpt, bOpt := a.Kind == Optional, b.Kind == Optional
	if a.Kind == Null {
		return NewOptional(b), true
	}
	if b.Kind == Null {
		return NewOptional(a), true
	}
	if aOpt || bOpt {
		inner, ok := Lub(a.Unwrap(), b.Unwrap())
		return NewOptional(inner), ok
	}

	if a.Kind == Any {
		return b, true
	}
	if b.Kind == Any {
		return a, true
	}

	if Equal(a, b) {
		return a, true
	}

	// integer < real
	if a.Kind == Integer && b.Kind == Real {
		return NewReal(), true
	}
	if a.Kind == Real && b.Kind == Integer {
		return NewReal(), true
	}

	// bool behaves as integer for lub purposes (SQLite has no real bool type).
	if a.Kind == Bool && b.Kind == Integer || a.Kind == Integer && b.Kind == Bool {
		return NewInteger(), true
	}
	if a.Kind == Bool && b.Kind == Real || a.Kind == Real && b.Kind == Bool {
		return NewReal(), true
	}
	if a.Kind == Bool && b.Kind == Bool {
		return NewBool(), true
	}

	if a.Kind == Row && b.Kind == Row {
		return lubRow(a, b)
	}

	// Cross-family coercion (integer/real with text/blob) is SQLite-legal
	// via affinity but semantically lossy; widen to text and flag it.
	if (numericish(a) && textish(b)) || (textish(a) && numericish(b)) {
		return NewText(), false
	}
	if a.Kind == Blob || b.Kind == Blob {
		return NewBlob(), a.Kind == b.Kind
	}

	return NewAny(), false
}

func numericish(t *Type) bool {
	return t.Kind == Integer || t.Kind == Real || t.Kind == Bool
}

func textish(t *Type) bool {
	return t.Kind == Text
}

func lubRow(a, b *Type) (*Type, bool) {
	if a.Shape == RowUnknown && b.Shape == RowUnknown {
		elem, ok := Lub(a.Elem, b.Elem)
		return NewRowUnknown(elem), ok
	}
	if a.Shape == RowUnnamed && b.Shape == RowUnnamed && len(a.Elements) == len(b.Elements) {
		out := make([]*Type, len(a.Elements))
		clean := true
		for i := range a.Elements {
			t, ok := Lub(a.Elements[i], b.Elements[i])
			out[i] = t
			clean = clean && ok
		}
		return NewRowUnnamed(out), clean
	}
	return a, false
}

// LubAll folds Lub across a slice, used for variadic-arity built-ins like
// coalesce/min/max. Returns any with ok=true for an empty slice.
func LubAll(ts []*Type) (*Type, bool) {
	if len(ts) == 0 {
		return NewAny(), true
	}
	result := ts[0]
	ok := true
	for _, t := range ts[1:] {
		var thisOK bool
		result, thisOK = Lub(result, t)
		ok = ok && thisOK
	}
	return result, ok
}
