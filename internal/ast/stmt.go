package ast

import "github.com/wickwirew/sqlsig/internal/srcmap"

// Stmt is the sum type over every top-level statement node.
type Stmt interface {
	stmtNode()
	ID() NodeID
	Span() srcmap.Span
}

// ColumnDef is one column in a CREATE TABLE or one column added by ALTER
// TABLE ADD COLUMN.
type ColumnDef struct {
	Name       string
	TypeName   string // raw declared type, e.g. "VARCHAR(32)", "" if untyped
	CustomTag  string // captured from an `AS <tag>` right after the declared type name, if any
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	HasDefault bool
	Default    Expr
	Generated  Expr // GENERATED ALWAYS AS (expr)
	Doc        string
}

// PrimaryKeyDef is a table-level `PRIMARY KEY (cols...)` constraint.
type PrimaryKeyDef struct {
	Columns []string
	AutoInc bool
}

// UniqueDef is a table-level `UNIQUE (cols...)` constraint.
type UniqueDef struct {
	Columns []string
}

// ForeignKeyDef is a table-level or column-level foreign key constraint.
type ForeignKeyDef struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// CreateTable is `CREATE TABLE [IF NOT EXISTS] name (...)  [WITHOUT ROWID] [STRICT]`.
type CreateTable struct {
	base
	Name        string
	IfNotExists bool
	Columns     []ColumnDef
	PrimaryKeys []PrimaryKeyDef
	Uniques     []UniqueDef
	ForeignKeys []ForeignKeyDef
	WithoutRowID bool
	Strict      bool
	// Virtual is set for `CREATE VIRTUAL TABLE ... USING module(args...)`.
	Virtual    bool
	ModuleName string
	ModuleArgs []string
	Doc        string
}

func (*CreateTable) stmtNode() {}

// AlterKind classifies the form of ALTER TABLE.
type AlterKind int

const (
	AlterRenameTable AlterKind = iota
	AlterRenameColumn
	AlterAddColumn
	AlterDropColumn
)

// AlterTable is any of the four SQLite ALTER TABLE forms.
type AlterTable struct {
	base
	Table     string
	Kind      AlterKind
	NewName   string    // AlterRenameTable / AlterRenameColumn target name
	OldColumn string    // AlterRenameColumn / AlterDropColumn source name
	NewColumn *ColumnDef // AlterAddColumn
}

func (*AlterTable) stmtNode() {}

// CreateIndex is `CREATE [UNIQUE] INDEX [IF NOT EXISTS] name ON table (cols...) [WHERE expr]`.
type CreateIndex struct {
	base
	Name        string
	Table       string
	Unique      bool
	IfNotExists bool
	Columns     []string
	Where       Expr
}

func (*CreateIndex) stmtNode() {}

// DropKind names the kind of object a DROP statement removes.
type DropKind int

const (
	DropTable DropKind = iota
	DropIndex
	DropView
	DropTrigger
)

// Drop is `DROP {TABLE|INDEX|VIEW|TRIGGER} [IF EXISTS] name`.
type Drop struct {
	base
	Kind     DropKind
	Name     string
	IfExists bool
}

func (*Drop) stmtNode() {}

// CreateView is `CREATE VIEW [IF NOT EXISTS] name [(cols...)] AS select`.
type CreateView struct {
	base
	Name        string
	IfNotExists bool
	Columns     []string
	Select      *Select
	Doc         string
}

func (*CreateView) stmtNode() {}

// CreateTrigger is `CREATE TRIGGER name {BEFORE|AFTER|INSTEAD OF} event ON table ...`.
// The trigger body is not modeled statement-by-statement; its raw text is
// retained since trigger bodies are out of scope for signature inference.
type CreateTrigger struct {
	base
	Name  string
	Table string
	Body  string
}

func (*CreateTrigger) stmtNode() {}

// JoinKind classifies how two table sources are combined.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

// TableSource is one entry in a FROM clause: a bare table, a subquery, or a
// table-valued function call, each optionally aliased.
type TableSource struct {
	Table    string // table name, empty if Subquery/Func set
	Schema   string
	Alias    string
	Subquery *Select
	Func     *Function // table-valued function call, e.g. json_each(x)
	Join     JoinKind
	JoinOn   Expr
	JoinUsing []string
	Natural   bool
}

// ResultColumn is one entry in a SELECT's column list: `*`, `table.*`, or an
// expression with an optional alias.
type ResultColumn struct {
	Star      bool
	StarTable string // for `table.*`
	Expr      Expr
	Alias     string
}

// OrderingTerm is one `expr [ASC|DESC]` entry in an ORDER BY clause.
type OrderingTerm struct {
	Expr Expr
	Desc bool
}

// CTE is one entry in a WITH clause.
type CTE struct {
	Name      string
	Columns   []string
	Select    *Select
	Recursive bool
}

// CompoundOp names how two SELECT cores are combined (UNION, UNION ALL,
// INTERSECT, EXCEPT); zero value means "no compound".
type CompoundOp int

const (
	CompoundNone CompoundOp = iota
	CompoundUnion
	CompoundUnionAll
	CompoundIntersect
	CompoundExcept
)

// Select is a full SELECT statement, including any WITH prefix and compound
// (UNION/INTERSECT/EXCEPT) continuation.
type Select struct {
	base
	CTEs       []CTE
	Distinct   bool
	Columns    []ResultColumn
	From       []TableSource
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	OrderBy    []OrderingTerm
	Limit      Expr
	Offset     Expr
	Compound   CompoundOp
	CompoundOf *Select // the next SELECT in a UNION/INTERSECT/EXCEPT chain
}

func (*Select) stmtNode() {}

// InsertAssign pairs a target column with its source expression, used when
// an INSERT explicitly lists columns alongside VALUES rows.
type InsertAssign struct {
	Column string
	Values []Expr // one entry per VALUES row, aligned with Column
}

// ConflictAction names an `ON CONFLICT` / `OR` resolution for INSERT/UPDATE.
type ConflictAction int

const (
	ConflictNone ConflictAction = iota
	ConflictRollback
	ConflictAbort
	ConflictFail
	ConflictIgnore
	ConflictReplace
)

// Insert is `INSERT [OR action] INTO table (cols...) VALUES (...), ... | SELECT ... [RETURNING ...]`.
type Insert struct {
	base
	Table      string
	Columns    []string
	Rows       [][]Expr
	Select     *Select // alternative to Rows: INSERT INTO t SELECT ...
	Conflict   ConflictAction
	Returning  []ResultColumn
	UpsertDo   []SetClause // ON CONFLICT DO UPDATE SET ...
	UpsertCols []string    // ON CONFLICT (cols...)
}

func (*Insert) stmtNode() {}

// SetClause is one `col = expr` assignment in an UPDATE's SET list.
type SetClause struct {
	Column string
	Value  Expr
}

// Update is `UPDATE [OR action] table SET assignments [WHERE expr] [RETURNING ...]`.
type Update struct {
	base
	Table     string
	Conflict  ConflictAction
	Set       []SetClause
	From      []TableSource
	Where     Expr
	Returning []ResultColumn
}

func (*Update) stmtNode() {}

// Delete is `DELETE FROM table [WHERE expr] [RETURNING ...]`.
type Delete struct {
	base
	Table     string
	Where     Expr
	Returning []ResultColumn
}

func (*Delete) stmtNode() {}

// Pragma is `PRAGMA name [= value | (value)]`. Pragmas never participate in
// type inference; they're modeled only so the parser can skip past them.
type Pragma struct {
	base
	Name  string
	Value string
}

func (*Pragma) stmtNode() {}

// Reindex is `REINDEX [name]`.
type Reindex struct {
	base
	Name string
}

func (*Reindex) stmtNode() {}
