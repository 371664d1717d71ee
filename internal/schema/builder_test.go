package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/types"
)

func buildSchema(t *testing.T, migrations ...string) (*Schema, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	b := NewBuilder(bag)
	for i, m := range migrations {
		b.ApplyMigration(fixtureName(i), m)
	}
	return b.Schema(), bag
}

func fixtureName(i int) string {
	names := []string{"0001_init.sql", "0002_next.sql", "0003_next.sql"}
	if i < len(names) {
		return names[i]
	}
	return "extra.sql"
}

func TestCreateTableColumnTypes(t *testing.T) {
	sch, bag := buildSchema(t, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			nickname TEXT
		);
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	tbl, ok := sch.Lookup(QualifiedName{Name: "users"})
	if !ok {
		t.Fatalf("users table not found")
	}
	cases := []struct {
		col  string
		want string
	}{
		{"id", "integer"},
		{"email", "text"},
		{"nickname", "optional(text)"},
	}
	for _, tc := range cases {
		t.Run(tc.col, func(t *testing.T) {
			c, ok := tbl.Column(tc.col)
			if !ok {
				t.Fatalf("column %q not found", tc.col)
			}
			if got := c.Type.String(); got != tc.want {
				t.Errorf("type of %s = %s, want %s", tc.col, got, tc.want)
			}
		})
	}
	if len(tbl.PrimaryKey) != 1 || tbl.PrimaryKey[0] != "id" {
		t.Errorf("primary key = %v, want [id]", tbl.PrimaryKey)
	}
}

func TestAlterTableAddColumnThenUse(t *testing.T) {
	sch, bag := buildSchema(t,
		`CREATE TABLE accounts (id INTEGER PRIMARY KEY);`,
		`ALTER TABLE accounts ADD COLUMN balance REAL NOT NULL;`,
	)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	tbl, _ := sch.Lookup(QualifiedName{Name: "accounts"})
	c, ok := tbl.Column("balance")
	if !ok {
		t.Fatalf("balance column missing after ALTER")
	}
	if c.Type.String() != "real" {
		t.Errorf("balance type = %s, want real", c.Type.String())
	}
}

func TestAlterTableRenameTableRebindsKey(t *testing.T) {
	sch, bag := buildSchema(t,
		`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`,
		`ALTER TABLE widgets RENAME TO gadgets;`,
	)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	if _, ok := sch.Lookup(QualifiedName{Name: "widgets"}); ok {
		t.Errorf("old table name widgets should no longer resolve")
	}
	tbl, ok := sch.Lookup(QualifiedName{Name: "gadgets"})
	if !ok {
		t.Fatalf("renamed table gadgets not found")
	}
	if tbl.Name != "gadgets" {
		t.Errorf("table.Name = %q, want gadgets", tbl.Name)
	}
}

func TestDropTableRemovesTable(t *testing.T) {
	sch, bag := buildSchema(t,
		`CREATE TABLE temp_items (id INTEGER PRIMARY KEY);`,
		`DROP TABLE temp_items;`,
	)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	if _, ok := sch.Lookup(QualifiedName{Name: "temp_items"}); ok {
		t.Errorf("temp_items should have been dropped")
	}
}

func TestCreateViewStoresSelectForLazyResolution(t *testing.T) {
	sch, bag := buildSchema(t, `
		CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL);
		CREATE VIEW user_emails AS SELECT id, email FROM users;
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	view, ok := sch.Lookup(QualifiedName{Name: "user_emails"})
	if !ok {
		t.Fatalf("user_emails view not found")
	}
	if view.Kind != View {
		t.Errorf("Kind = %v, want View", view.Kind)
	}
	if view.ViewSelect == nil {
		t.Errorf("ViewSelect should be stored, not nil")
	}
	if len(view.Columns) != 0 {
		t.Errorf("view columns should be unresolved until first checked, got %d", len(view.Columns))
	}
}

func TestFTS5VirtualTableGetsRankColumn(t *testing.T) {
	sch, bag := buildSchema(t, `
		CREATE VIRTUAL TABLE docs USING fts5(title, body);
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	tbl, ok := sch.Lookup(QualifiedName{Name: "docs"})
	if !ok {
		t.Fatalf("docs table not found")
	}
	if tbl.Kind != FTS5 {
		t.Errorf("Kind = %v, want FTS5", tbl.Kind)
	}
	if _, ok := tbl.Column("rank"); !ok {
		t.Errorf("fts5 table should have a synthetic rank column")
	}
}

func TestUnknownTableDiagnostics(t *testing.T) {
	_, bag := buildSchema(t, `ALTER TABLE ghost ADD COLUMN x INTEGER;`)
	if !bag.HasErrors() {
		t.Errorf("expected a diagnostic for ALTER of an undefined table")
	}
}

func TestSchemaCloneIsIndependent(t *testing.T) {
	sch, bag := buildSchema(t, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	clone := sch.Clone()
	tbl, _ := clone.Lookup(QualifiedName{Name: "items"})
	tbl.Name = "mutated"
	orig, _ := sch.Lookup(QualifiedName{Name: "items"})
	if orig.Name != "items" {
		t.Errorf("mutating a clone's table leaked into the original: %q", orig.Name)
	}
}

// TestIdempotentSchemaBuildStructurally re-checks that building the same
// migration twice produces the same schema, using a full go-cmp structural
// diff rather than field-by-field assertions.
func TestIdempotentSchemaBuildStructurally(t *testing.T) {
	migration := `CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL NOT NULL, label TEXT DEFAULT 'n/a', tax NUMERIC DEFAULT 0.0825);`
	sch1, bag1 := buildSchema(t, migration)
	sch2, bag2 := buildSchema(t, migration)
	if bag1.HasErrors() || bag2.HasErrors() {
		t.Fatalf("unexpected errors building schema twice")
	}
	t1, _ := sch1.Lookup(QualifiedName{Name: "orders"})
	t2, _ := sch2.Lookup(QualifiedName{Name: "orders"})

	opts := cmp.Options{
		cmp.Comparer(func(a, b *types.Type) bool { return types.Equal(a, b) }),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(t1.Columns, t2.Columns, opts); diff != "" {
		t.Errorf("building the same migration twice produced a different schema (-first +second):\n%s", diff)
	}
}

// TestDefaultLiteralFoldsToDecimalValue checks decimal.Decimal wiring: a
// NUMERIC/DECIMAL column's DEFAULT literal is captured precisely rather
// than round-tripped through float64.
func TestDefaultLiteralFoldsToDecimalValue(t *testing.T) {
	sch, bag := buildSchema(t, `CREATE TABLE prices (id INTEGER PRIMARY KEY, rate NUMERIC DEFAULT 0.1825, label TEXT DEFAULT 'std', note TEXT DEFAULT NULL);`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.All())
	}
	tbl, _ := sch.Lookup(QualifiedName{Name: "prices"})

	rate, ok := tbl.Column("rate")
	if !ok || rate.Default == nil || rate.Default.Kind != ValueDecimal {
		t.Fatalf("rate.Default = %+v, want a folded ValueDecimal", rate.Default)
	}
	want := decimal.RequireFromString("0.1825")
	if !rate.Default.Decimal.Equal(want) {
		t.Errorf("rate.Default.Decimal = %s, want %s", rate.Default.Decimal, want)
	}

	label, ok := tbl.Column("label")
	if !ok || label.Default == nil || label.Default.Kind != ValueText || label.Default.Text != "std" {
		t.Fatalf("label.Default = %+v, want ValueText(std)", label.Default)
	}

	note, ok := tbl.Column("note")
	if !ok || note.Default == nil || note.Default.Kind != ValueNull {
		t.Fatalf("note.Default = %+v, want ValueNull", note.Default)
	}
}

func TestIdempotentSchemaBuild(t *testing.T) {
	migration := `CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL NOT NULL);`
	sch1, bag1 := buildSchema(t, migration)
	sch2, bag2 := buildSchema(t, migration)
	if bag1.HasErrors() || bag2.HasErrors() {
		t.Fatalf("unexpected errors building schema twice")
	}
	t1, _ := sch1.Lookup(QualifiedName{Name: "orders"})
	t2, _ := sch2.Lookup(QualifiedName{Name: "orders"})
	if len(t1.Columns) != len(t2.Columns) {
		t.Fatalf("column count differs across identical builds: %d vs %d", len(t1.Columns), len(t2.Columns))
	}
	for i := range t1.Columns {
		if t1.Columns[i].Name != t2.Columns[i].Name || t1.Columns[i].Type.String() != t2.Columns[i].Type.String() {
			t.Errorf("column %d differs: %+v vs %+v", i, t1.Columns[i], t2.Columns[i])
		}
	}
}
