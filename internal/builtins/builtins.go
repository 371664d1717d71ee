// Package builtins is the closed table of SQLite built-in scalar and
// aggregate function signatures the type checker consults when resolving a
// Function call node. Lookup is case-insensitive; an unrecognized name
// falls back to any with a warning rather than a hard error, since it may
// be a user-registered function this module has no visibility into.
package builtins

import "github.com/wickwirew/sqlsig/internal/types"

// Arity bounds the number of arguments a function accepts. Max of -1 means
// variadic (no upper bound).
type Arity struct {
	Min int
	Max int
}

func fixed(n int) Arity    { return Arity{Min: n, Max: n} }
func between(a, b int) Arity { return Arity{Min: a, Max: b} }
func atLeast(n int) Arity  { return Arity{Min: n, Max: -1} }

// Resolver computes a call's result type given its already-inferred
// argument types. Implementations look only at shape (count, lub-ability),
// never at literal values.
type Resolver func(args []*types.Type) *types.Type

// Entry is one built-in function's declared contract.
type Entry struct {
	Arity      Arity
	Resolve    Resolver
	Aggregate  bool
	AllowsStar bool // count(*) and friends
}

func constant(t func() *types.Type) Resolver {
	return func(args []*types.Type) *types.Type { return t() }
}

func polymorphicLub() Resolver {
	return func(args []*types.Type) *types.Type {
		t, _ := types.LubAll(args)
		return t
	}
}

func firstArgOptional() Resolver {
	return func(args []*types.Type) *types.Type {
		if len(args) == 0 {
			return types.NewAny()
		}
		return types.NewOptional(args[0])
	}
}

// coalesceLike resolves coalesce/ifnull: the result is the lub of every
// argument, stripped of optional only when the last argument is itself
// guaranteed non-null. If the last (final fallback) argument is still
// optional(T), the whole call can still evaluate to NULL.
func coalesceLike() Resolver {
	return func(args []*types.Type) *types.Type {
		lub, _ := types.LubAll(args)
		if len(args) > 0 && args[len(args)-1].Kind == types.Optional {
			return lub
		}
		return lub.Unwrap()
	}
}

// Table is the closed dictionary of recognized built-ins, keyed by
// lowercase name.
var Table = map[string]Entry{
	"length":        {Arity: fixed(1), Resolve: constant(types.NewInteger)},
	"octet_length":  {Arity: fixed(1), Resolve: constant(types.NewInteger)},
	"lower":         {Arity: fixed(1), Resolve: constant(types.NewText)},
	"upper":         {Arity: fixed(1), Resolve: constant(types.NewText)},
	"trim":          {Arity: between(1, 2), Resolve: constant(types.NewText)},
	"ltrim":         {Arity: between(1, 2), Resolve: constant(types.NewText)},
	"rtrim":         {Arity: between(1, 2), Resolve: constant(types.NewText)},
	"replace":       {Arity: fixed(3), Resolve: constant(types.NewText)},
	"substr":        {Arity: between(2, 3), Resolve: constant(types.NewText)},
	"substring":     {Arity: between(2, 3), Resolve: constant(types.NewText)},
	"printf":        {Arity: atLeast(1), Resolve: constant(types.NewText)},
	"format":        {Arity: atLeast(1), Resolve: constant(types.NewText)},
	"hex":           {Arity: fixed(1), Resolve: constant(types.NewText)},
	"quote":         {Arity: fixed(1), Resolve: constant(types.NewText)},
	"char":          {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"unicode":       {Arity: fixed(1), Resolve: constant(types.NewInteger)},
	"instr":         {Arity: fixed(2), Resolve: constant(types.NewInteger)},
	"abs":           {Arity: fixed(1), Resolve: func(args []*types.Type) *types.Type {
		if len(args) == 1 {
			return args[0]
		}
		return types.NewAny()
	}},
	"round":    {Arity: between(1, 2), Resolve: constant(types.NewReal)},
	"random":   {Arity: fixed(0), Resolve: constant(types.NewInteger)},
	"randomblob": {Arity: fixed(1), Resolve: constant(types.NewBlob)},
	"zeroblob": {Arity: fixed(1), Resolve: constant(types.NewBlob)},
	"typeof":   {Arity: fixed(1), Resolve: constant(types.NewText)},
	"likelihood": {Arity: fixed(2), Resolve: func(args []*types.Type) *types.Type { return args[0] }},
	"likely":     {Arity: fixed(1), Resolve: func(args []*types.Type) *types.Type { return args[0] }},
	"unlikely":   {Arity: fixed(1), Resolve: func(args []*types.Type) *types.Type { return args[0] }},

	"coalesce": {Arity: atLeast(2), Resolve: coalesceLike()},
	"ifnull":   {Arity: fixed(2), Resolve: coalesceLike()},
	"nullif": {Arity: fixed(2), Resolve: firstArgOptional()},

	"max": {Arity: atLeast(1), Resolve: polymorphicLub(), Aggregate: true},
	"min": {Arity: atLeast(1), Resolve: polymorphicLub(), Aggregate: true},

	"count":        {Arity: between(0, 1), Resolve: constant(types.NewInteger), Aggregate: true, AllowsStar: true},
	"sum":          {Arity: fixed(1), Resolve: func(args []*types.Type) *types.Type { return types.NewOptional(types.NewReal()) }, Aggregate: true},
	"total":        {Arity: fixed(1), Resolve: constant(types.NewReal), Aggregate: true},
	"avg":          {Arity: fixed(1), Resolve: func(args []*types.Type) *types.Type { return types.NewOptional(types.NewReal()) }, Aggregate: true},
	"group_concat": {Arity: between(1, 2), Resolve: func(args []*types.Type) *types.Type { return types.NewOptional(types.NewText()) }, Aggregate: true},

	"date":          {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"time":          {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"datetime":      {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"julianday":     {Arity: atLeast(0), Resolve: constant(types.NewReal)},
	"unixepoch":     {Arity: atLeast(0), Resolve: constant(types.NewInteger)},
	"strftime":      {Arity: atLeast(1), Resolve: constant(types.NewText)},

	"json":        {Arity: fixed(1), Resolve: constant(types.NewText)},
	"json_extract": {Arity: atLeast(2), Resolve: constant(types.NewAny)},
	"json_array":  {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"json_object": {Arity: atLeast(0), Resolve: constant(types.NewText)},
	"json_valid":  {Arity: fixed(1), Resolve: constant(types.NewBool)},
	"json_each":   {Arity: between(1, 2), Resolve: constant(types.NewAny)},
	"json_tree":   {Arity: between(1, 2), Resolve: constant(types.NewAny)},

	"cast":      {Arity: fixed(1), Resolve: constant(types.NewAny)},
	"iif":       {Arity: fixed(3), Resolve: func(args []*types.Type) *types.Type {
		lub, _ := types.Lub(args[1], args[2])
		return lub
	}},
	"changes":           {Arity: fixed(0), Resolve: constant(types.NewInteger)},
	"total_changes":      {Arity: fixed(0), Resolve: constant(types.NewInteger)},
	"last_insert_rowid":  {Arity: fixed(0), Resolve: constant(types.NewInteger)},
	"sqlite_version":     {Arity: fixed(0), Resolve: constant(types.NewText)},
}

// Lookup finds a built-in by case-folded name.
func Lookup(name string) (Entry, bool) {
	e, ok := Table[lower(name)]
	return e, ok
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Matches reports whether n arguments satisfy a's bounds.
func (a Arity) Matches(n int) bool {
	if n < a.Min {
		return false
	}
	if a.Max == -1 {
		return true
	}
	return n <= a.Max
}
