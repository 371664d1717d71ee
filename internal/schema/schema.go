// Package schema builds and evolves a Schema snapshot by executing DDL
// statements in order, the way a sequence of migrations would against a
// real database.
package schema

import (
	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/types"
)

// Kind classifies what a Table represents.
type Kind int

const (
	Normal Kind = iota
	FTS5
	View
	Virtual
)

// QualifiedName names a schema object, optionally qualified by an attached
// database schema ("main" is the default and modeled as the empty string).
type QualifiedName struct {
	Schema string
	Name   string
}

// Column is one ordered entry of a Table, carrying its fully resolved
// lattice type (already folded with NOT NULL / PRIMARY KEY / DEFAULT).
type Column struct {
	Name string
	Type *types.Type

	// Default is the column's folded DEFAULT literal, or nil when the
	// column has none or its default isn't a statically foldable literal.
	Default *Value
}

// Table is a normalized, queryable view of a CREATE TABLE/VIEW/VIRTUAL
// TABLE statement's effect on the schema. Columns preserve declaration
// order; ColumnIndex gives O(1) lookup by name.
type Table struct {
	Name        string
	Kind        Kind
	Columns     []Column
	ColumnIndex map[string]int
	PrimaryKey  []string
	IsTemporary bool

	// ViewSelect holds a View table's defining query so the checker can
	// resolve its projected column types on demand, memoizing the result
	// back into Columns the first time the view is referenced.
	ViewSelect *ast.Select
}

// Column looks up a column by name, returning (column, true) if present.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.ColumnIndex[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// addColumn appends a column and indexes it, replacing any prior column of
// the same name (used by ALTER ... ADD COLUMN and initial CREATE parsing).
func (t *Table) addColumn(c Column) {
	if t.ColumnIndex == nil {
		t.ColumnIndex = map[string]int{}
	}
	if i, ok := t.ColumnIndex[c.Name]; ok {
		t.Columns[i] = c
		return
	}
	t.ColumnIndex[c.Name] = len(t.Columns)
	t.Columns = append(t.Columns, c)
}

func (t *Table) dropColumn(name string) {
	i, ok := t.ColumnIndex[name]
	if !ok {
		return
	}
	t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
	delete(t.ColumnIndex, name)
	for n, idx := range t.ColumnIndex {
		if idx > i {
			t.ColumnIndex[n] = idx - 1
		}
	}
}

func (t *Table) renameColumn(oldName, newName string) {
	i, ok := t.ColumnIndex[oldName]
	if !ok {
		return
	}
	t.Columns[i].Name = newName
	delete(t.ColumnIndex, oldName)
	t.ColumnIndex[newName] = i
}

// Schema is the full set of known tables/views, keyed by qualified name.
// It grows monotonically as migrations are applied in order; ALTER mutates
// tables in place and RENAME TABLE rebinds the map key.
type Schema struct {
	Tables map[QualifiedName]*Table
}

func New() *Schema {
	return &Schema{Tables: map[QualifiedName]*Table{}}
}

// Lookup finds a table by (possibly schema-qualified) name. An empty schema
// in name matches any table regardless of which schema it was declared
// under, mirroring SQLite's default "main" resolution when a query omits
// the schema prefix.
func (s *Schema) Lookup(name QualifiedName) (*Table, bool) {
	if t, ok := s.Tables[name]; ok {
		return t, ok
	}
	if name.Schema == "" {
		for q, t := range s.Tables {
			if q.Name == name.Name {
				return t, true
			}
		}
	}
	return nil, false
}

// Clone deep-copies the schema so a caller can snapshot it before applying
// further migrations (used by the idempotent-schema test property: building
// from the same migration list twice must produce structurally identical
// results, never an aliased one).
func (s *Schema) Clone() *Schema {
	out := New()
	for q, t := range s.Tables {
		nt := &Table{
			Name:        t.Name,
			Kind:        t.Kind,
			PrimaryKey:  append([]string(nil), t.PrimaryKey...),
			IsTemporary: t.IsTemporary,
			ViewSelect:  t.ViewSelect,
			ColumnIndex: make(map[string]int, len(t.ColumnIndex)),
		}
		nt.Columns = make([]Column, len(t.Columns))
		copy(nt.Columns, t.Columns)
		for i, c := range nt.Columns {
			if c.Default != nil {
				d := *c.Default
				nt.Columns[i].Default = &d
			}
		}
		for k, v := range t.ColumnIndex {
			nt.ColumnIndex[k] = v
		}
		out.Tables[q] = nt
	}
	return out
}
