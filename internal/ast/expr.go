package ast

import "github.com/wickwirew/sqlsig/internal/srcmap"

// Expr is the sum type over every expression node. Implementations are
// exhaustively enumerated below; new variants must be added to every
// consumer's type switch by hand, since the Go compiler does not report a
// type switch that misses a case.
type Expr interface {
	exprNode()
	ID() NodeID
	Span() srcmap.Span
}

type base struct {
	NodeID NodeID
	Sp     srcmap.Span
}

func (b base) ID() NodeID        { return b.NodeID }
func (b base) Span() srcmap.Span { return b.Sp }

// LiteralKind classifies a Literal expression's underlying token.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralInt
	LiteralDouble
	LiteralHex
	LiteralString
	LiteralBlob
	LiteralBool // CURRENT_TIME/TRUE/FALSE style keyword literals are folded elsewhere; reserved for boolean literal extensions
)

// Literal is a constant value appearing directly in the source text.
type Literal struct {
	base
	Kind LiteralKind
	Text string // original lexeme, e.g. "3.14", "'hi'" contents already unescaped for strings
}

func (*Literal) exprNode() {}

// ParamKind classifies how a bind parameter was spelled.
type ParamKind int

const (
	// ParamQuestion is a bare `?`, auto-numbered by occurrence.
	ParamQuestion ParamKind = iota
	// ParamNumbered is `?N`.
	ParamNumbered
	// ParamColon is `:name`.
	ParamColon
	// ParamAt is `@name`.
	ParamAt
	// ParamDollar is `$name`, Tcl style, with optional `::`-separated path
	// segments and a parenthesized suffix: `$db::user(name)`.
	ParamDollar
	// ParamSQLCNarg is `sqlc.narg('name')`, a named parameter whose resolved
	// type is wrapped in optional() regardless of the column it unifies with.
	ParamSQLCNarg
)

// BindParameter is a placeholder whose value is supplied at execution time.
type BindParameter struct {
	base
	ParamKind ParamKind
	Name      string // for Colon/At/Dollar; empty for Question/Numbered
	Number    int    // for Numbered (?N); 0 otherwise
	// Index is the dense, 1-based position assigned to this occurrence in the
	// enclosing statement's parameter table. Occurrences that name the same
	// parameter share an Index.
	Index int
}

func (*BindParameter) exprNode() {}

// Column references a column, optionally qualified by schema and/or table,
// or is the `*` / `table.*` wildcard when Name == "*".
type Column struct {
	base
	Schema string // optional
	Table  string // optional
	Name   string // identifier, or "*" for a wildcard
}

func (*Column) exprNode() {}

// Prefix is a unary prefix operator applied to an operand.
type Prefix struct {
	base
	Op  Operator
	RHS Expr
}

func (*Prefix) exprNode() {}

// Infix is a binary operator applied to two operands. Not is true when a
// leading NOT negates an operator from Operator.AllowsLeadingNot (NOT IN,
// NOT LIKE, ...).
type Infix struct {
	base
	Op  Operator
	Not bool
	LHS Expr
	RHS Expr
	// Escape holds the optional `ESCAPE <expr>` trailing a LIKE operator.
	Escape Expr
	// Collation holds the optional `COLLATE <name>` trailing a comparison.
	Collation string
}

func (*Infix) exprNode() {}

// Postfix is a unary postfix operator (COLLATE name, ISNULL, NOTNULL).
type Postfix struct {
	base
	Op   Operator
	LHS  Expr
	Name string // collation name, for OpCollate
}

func (*Postfix) exprNode() {}

// Between is `value [NOT] BETWEEN lo AND hi`.
type Between struct {
	base
	Not   bool
	Value Expr
	Lo    Expr
	Hi    Expr
}

func (*Between) exprNode() {}

// Function is a function call, optionally schema-qualified, with Distinct
// set when `DISTINCT` precedes the argument list and Star set for `count(*)`.
type Function struct {
	base
	Table    string // optional qualifying schema/table-like prefix (rare)
	Name     string
	Args     []Expr
	Distinct bool
	Star     bool
	// Filter is the optional `FILTER (WHERE ...)` clause on an aggregate.
	Filter Expr
}

func (*Function) exprNode() {}

// Cast is `CAST(expr AS type)`.
type Cast struct {
	base
	Expr Expr
	Type string
}

func (*Cast) exprNode() {}

// WhenThen is one `WHEN cond THEN result` arm of a CaseWhenThen.
type WhenThen struct {
	When Expr
	Then Expr
}

// CaseWhenThen is a CASE expression, with or without a scrutinee.
type CaseWhenThen struct {
	base
	Scrutinee Expr // optional; nil for the searched-CASE form
	Arms      []WhenThen
	Else      Expr // optional
}

func (*CaseWhenThen) exprNode() {}

// Grouped is a parenthesized expression list: `(e)` is just parenthesization,
// `(e1, e2, ...)` is a row/tuple literal (used on the right of `IN`, e.g.).
type Grouped struct {
	base
	Exprs []Expr
}

func (*Grouped) exprNode() {}

// SubquerySelect is a SELECT appearing in expression position, e.g.
// `WHERE x = (SELECT ...)`. The select is boxed to close the cycle between
// expressions and statements without a raw back-reference.
type SubquerySelect struct {
	base
	Select *Select
}

func (*SubquerySelect) exprNode() {}

// Exists is `[NOT] EXISTS (select)`.
type Exists struct {
	base
	Not    bool
	Select *Select
}

func (*Exists) exprNode() {}

// Invalid is an error-recovery placeholder produced when the parser cannot
// make sense of a token in expression position. The tree remains well-formed
// even in the presence of syntax errors.
type Invalid struct {
	base
	Reason string
}

func (*Invalid) exprNode() {}

// Constructors below are the only way outside the package to populate the
// unexported base embedded in every node; the parser calls these rather than
// building node literals by hand.

func NewLiteral(id NodeID, span srcmap.Span, kind LiteralKind, text string) *Literal {
	return &Literal{base: base{NodeID: id, Sp: span}, Kind: kind, Text: text}
}

func NewBindParameter(id NodeID, span srcmap.Span, kind ParamKind, name string, number int) *BindParameter {
	return &BindParameter{base: base{NodeID: id, Sp: span}, ParamKind: kind, Name: name, Number: number}
}

func NewColumn(id NodeID, span srcmap.Span, schema, table, name string) *Column {
	return &Column{base: base{NodeID: id, Sp: span}, Schema: schema, Table: table, Name: name}
}

func NewPrefix(id NodeID, span srcmap.Span, op Operator, rhs Expr) *Prefix {
	return &Prefix{base: base{NodeID: id, Sp: span}, Op: op, RHS: rhs}
}

func NewInfix(id NodeID, span srcmap.Span, op Operator, not bool, lhs, rhs Expr) *Infix {
	return &Infix{base: base{NodeID: id, Sp: span}, Op: op, Not: not, LHS: lhs, RHS: rhs}
}

func NewPostfix(id NodeID, span srcmap.Span, op Operator, lhs Expr, name string) *Postfix {
	return &Postfix{base: base{NodeID: id, Sp: span}, Op: op, LHS: lhs, Name: name}
}

func NewBetween(id NodeID, span srcmap.Span, not bool, value, lo, hi Expr) *Between {
	return &Between{base: base{NodeID: id, Sp: span}, Not: not, Value: value, Lo: lo, Hi: hi}
}

func NewFunction(id NodeID, span srcmap.Span, table, name string, args []Expr, distinct, star bool, filter Expr) *Function {
	return &Function{base: base{NodeID: id, Sp: span}, Table: table, Name: name, Args: args, Distinct: distinct, Star: star, Filter: filter}
}

func NewCast(id NodeID, span srcmap.Span, expr Expr, typ string) *Cast {
	return &Cast{base: base{NodeID: id, Sp: span}, Expr: expr, Type: typ}
}

func NewCaseWhenThen(id NodeID, span srcmap.Span, scrutinee Expr, arms []WhenThen, els Expr) *CaseWhenThen {
	return &CaseWhenThen{base: base{NodeID: id, Sp: span}, Scrutinee: scrutinee, Arms: arms, Else: els}
}

func NewGrouped(id NodeID, span srcmap.Span, exprs []Expr) *Grouped {
	return &Grouped{base: base{NodeID: id, Sp: span}, Exprs: exprs}
}

func NewSubquerySelect(id NodeID, span srcmap.Span, sel *Select) *SubquerySelect {
	return &SubquerySelect{base: base{NodeID: id, Sp: span}, Select: sel}
}

func NewExists(id NodeID, span srcmap.Span, not bool, sel *Select) *Exists {
	return &Exists{base: base{NodeID: id, Sp: span}, Not: not, Select: sel}
}

func NewInvalid(id NodeID, span srcmap.Span, reason string) *Invalid {
	return &Invalid{base: base{NodeID: id, Sp: span}, Reason: reason}
}
