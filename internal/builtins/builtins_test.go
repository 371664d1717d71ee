package builtins

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/types"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"count", "COUNT", "Count"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
}

func TestLookupUnknownNameMisses(t *testing.T) {
	if _, ok := Lookup("not_a_real_function"); ok {
		t.Errorf("Lookup of an unregistered name should fail")
	}
}

func TestArityMatches(t *testing.T) {
	cases := []struct {
		name string
		a    Arity
		n    int
		want bool
	}{
		{"fixed exact", fixed(2), 2, true},
		{"fixed too few", fixed(2), 1, false},
		{"fixed too many", fixed(2), 3, false},
		{"between low", between(1, 3), 1, true},
		{"between high", between(1, 3), 3, true},
		{"between out of range", between(1, 3), 4, false},
		{"atLeast satisfied", atLeast(1), 5, true},
		{"atLeast unsatisfied", atLeast(1), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Matches(tc.n); got != tc.want {
				t.Errorf("%v.Matches(%d) = %v, want %v", tc.a, tc.n, got, tc.want)
			}
		})
	}
}

func TestCountAllowsStarAndIsAggregate(t *testing.T) {
	e, ok := Lookup("count")
	if !ok {
		t.Fatalf("count not found")
	}
	if !e.Aggregate {
		t.Errorf("count should be flagged Aggregate")
	}
	if !e.AllowsStar {
		t.Errorf("count should allow count(*)")
	}
	if !e.Arity.Matches(0) {
		t.Errorf("count() with no args should be valid arity (count(*) case)")
	}
}

func TestSumAndAvgReturnOptionalReal(t *testing.T) {
	for _, name := range []string{"sum", "avg"} {
		e, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s not found", name)
		}
		got := e.Resolve([]*types.Type{types.NewInteger()})
		if !got.IsOptional() || got.Unwrap().Kind != types.Real {
			t.Errorf("%s(integer) = %s, want optional(real) (an aggregate over zero rows is NULL)", name, got)
		}
	}
}

func TestCoalesceUnwrapsOptionality(t *testing.T) {
	e, ok := Lookup("coalesce")
	if !ok {
		t.Fatalf("coalesce not found")
	}
	got := e.Resolve([]*types.Type{types.NewOptional(types.NewInteger()), types.NewInteger()})
	if got.IsOptional() {
		t.Errorf("coalesce(optional(integer), integer) = %s, should not be optional once a non-null fallback is present", got)
	}
}

func TestCoalesceStaysOptionalWhenLastArgumentIsOptional(t *testing.T) {
	e, ok := Lookup("coalesce")
	if !ok {
		t.Fatalf("coalesce not found")
	}
	// coalesce(name, bio) where bio is itself nullable: the whole call can
	// still evaluate to NULL if every argument, including the last, is NULL.
	got := e.Resolve([]*types.Type{types.NewText(), types.NewOptional(types.NewText())})
	if !got.IsOptional() {
		t.Errorf("coalesce(text, optional(text)) = %s, want optional(text): the last fallback is still nullable", got)
	}
}

func TestMaxMinArePolymorphicAggregates(t *testing.T) {
	for _, name := range []string{"max", "min"} {
		e, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s not found", name)
		}
		if !e.Aggregate {
			t.Errorf("%s should be flagged Aggregate", name)
		}
		got := e.Resolve([]*types.Type{types.NewInteger(), types.NewReal()})
		if got.Kind != types.Real {
			t.Errorf("%s(integer, real) = %s, want real via lub widening", name, got)
		}
	}
}

func TestIifResolvesToLubOfBranches(t *testing.T) {
	e, ok := Lookup("iif")
	if !ok {
		t.Fatalf("iif not found")
	}
	got := e.Resolve([]*types.Type{types.NewBool(), types.NewInteger(), types.NewReal()})
	if got.Kind != types.Real {
		t.Errorf("iif(cond, integer, real) = %s, want real", got)
	}
}

func TestNullifIsAlwaysOptional(t *testing.T) {
	e, ok := Lookup("nullif")
	if !ok {
		t.Fatalf("nullif not found")
	}
	got := e.Resolve([]*types.Type{types.NewText(), types.NewText()})
	if !got.IsOptional() {
		t.Errorf("nullif(...) = %s, want optional(_): it returns NULL when the arguments are equal", got)
	}
}
