package schema

import (
	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/parser"
	"github.com/wickwirew/sqlsig/internal/types"
)

// Builder executes DDL statements against a growing Schema. Statements are
// applied strictly in the order given across potentially many migration
// files; a later file's ALTER/DROP can target tables a prior file created.
type Builder struct {
	schema *Schema
	bag    *diag.Bag
}

// NewBuilder starts a fresh, empty schema.
func NewBuilder(bag *diag.Bag) *Builder {
	return &Builder{schema: New(), bag: bag}
}

// Schema returns the snapshot built so far.
func (b *Builder) Schema() *Schema {
	return b.schema
}

// ApplyMigration parses src and applies every DDL statement it contains, in
// order, to the schema. Non-DDL statements (a stray SELECT in a migration
// file) are flagged with a usage diagnostic and ignored.
func (b *Builder) ApplyMigration(file, src string) {
	stmts := parser.Parse(file, src, b.bag)
	for _, stmt := range stmts {
		b.Apply(file, stmt)
	}
}

// Apply applies one already-parsed statement to the schema.
func (b *Builder) Apply(file string, stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.CreateTable:
		b.applyCreateTable(file, n)
	case *ast.AlterTable:
		b.applyAlterTable(file, n)
	case *ast.CreateIndex:
		b.applyCreateIndex(file, n)
	case *ast.Drop:
		b.applyDrop(file, n)
	case *ast.CreateView:
		b.applyCreateView(file, n)
	case *ast.CreateTrigger:
		// Triggers don't alter the schema shape queries are checked against.
	default:
		b.bag.Errorf(file, stmt.Span(), "statement is not allowed in a migration file")
	}
}

func (b *Builder) applyCreateTable(file string, n *ast.CreateTable) {
	q := QualifiedName{Name: n.Name}
	if _, exists := b.schema.Tables[q]; exists {
		if n.IfNotExists {
			return
		}
		b.bag.Errorf(file, n.Span(), "table %q already defined", n.Name)
		return
	}
	kind := Normal
	if n.Virtual {
		kind = Virtual
	}
	t := &Table{Name: n.Name, Kind: kind, ColumnIndex: map[string]int{}}

	pkColumns := map[string]bool{}
	for _, pk := range n.PrimaryKeys {
		t.PrimaryKey = append(t.PrimaryKey, pk.Columns...)
		for _, c := range pk.Columns {
			pkColumns[c] = true
		}
	}
	for _, col := range n.Columns {
		if col.PrimaryKey {
			t.PrimaryKey = append(t.PrimaryKey, col.Name)
			pkColumns[col.Name] = true
		}
	}

	for _, col := range n.Columns {
		colType := affinityOf(col.TypeName)
		colType.CustomTag = col.CustomTag
		notNull := col.NotNull || pkColumns[col.Name]
		if !notNull {
			colType = types.NewOptional(colType)
		}
		c := Column{Name: col.Name, Type: colType}
		if col.HasDefault {
			if v, ok := evalDefault(col.Default); ok {
				c.Default = &v
			}
		}
		t.addColumn(c)
	}

	if isFTS5Module(n) {
		t.Kind = FTS5
		if _, ok := t.ColumnIndex["rank"]; !ok {
			t.addColumn(Column{Name: "rank", Type: types.NewReal()})
		}
	}

	b.schema.Tables[q] = t
}

func isFTS5Module(n *ast.CreateTable) bool {
	return n.Virtual && eqFold(n.ModuleName, "fts5")
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (b *Builder) applyAlterTable(file string, n *ast.AlterTable) {
	q := QualifiedName{Name: n.Table}
	t, ok := b.schema.Tables[q]
	if !ok {
		b.bag.Errorf(file, n.Span(), "ALTER TABLE of undefined table %q", n.Table)
		return
	}
	switch n.Kind {
	case ast.AlterRenameTable:
		delete(b.schema.Tables, q)
		t.Name = n.NewName
		b.schema.Tables[QualifiedName{Name: n.NewName}] = t
	case ast.AlterRenameColumn:
		if _, ok := t.Column(n.OldColumn); !ok {
			b.bag.Errorf(file, n.Span(), "RENAME COLUMN of undefined column %q on %q", n.OldColumn, n.Table)
			return
		}
		t.renameColumn(n.OldColumn, n.NewName)
	case ast.AlterAddColumn:
		if n.NewColumn == nil {
			return
		}
		colType := affinityOf(n.NewColumn.TypeName)
		colType.CustomTag = n.NewColumn.CustomTag
		if !n.NewColumn.NotNull {
			colType = types.NewOptional(colType)
		}
		c := Column{Name: n.NewColumn.Name, Type: colType}
		if n.NewColumn.HasDefault {
			if v, ok := evalDefault(n.NewColumn.Default); ok {
				c.Default = &v
			}
		}
		t.addColumn(c)
	case ast.AlterDropColumn:
		if _, ok := t.Column(n.OldColumn); !ok {
			b.bag.Errorf(file, n.Span(), "DROP COLUMN of undefined column %q on %q", n.OldColumn, n.Table)
			return
		}
		t.dropColumn(n.OldColumn)
	}
}

func (b *Builder) applyCreateIndex(file string, n *ast.CreateIndex) {
	q := QualifiedName{Name: n.Table}
	t, ok := b.schema.Tables[q]
	if !ok {
		b.bag.Errorf(file, n.Span(), "CREATE INDEX on undefined table %q", n.Table)
		return
	}
	for _, c := range n.Columns {
		if _, ok := t.Column(c); !ok {
			b.bag.Errorf(file, n.Span(), "index column %q does not exist on table %q", c, n.Table)
		}
	}
}

func (b *Builder) applyDrop(file string, n *ast.Drop) {
	q := QualifiedName{Name: n.Name}
	switch n.Kind {
	case ast.DropTable, ast.DropView:
		if _, ok := b.schema.Tables[q]; !ok {
			if !n.IfExists {
				b.bag.Errorf(file, n.Span(), "DROP of undefined object %q", n.Name)
			}
			return
		}
		delete(b.schema.Tables, q)
	case ast.DropIndex, ast.DropTrigger:
		// Indexes and triggers are not modeled as standalone schema objects.
	}
}

func (b *Builder) applyCreateView(file string, n *ast.CreateView) {
	q := QualifiedName{Name: n.Name}
	if _, exists := b.schema.Tables[q]; exists {
		if n.IfNotExists {
			return
		}
		b.bag.Errorf(file, n.Span(), "view %q already defined", n.Name)
		return
	}
	b.schema.Tables[q] = &Table{
		Name:        n.Name,
		Kind:        View,
		ColumnIndex: map[string]int{},
		ViewSelect:  n.Select,
	}
}
