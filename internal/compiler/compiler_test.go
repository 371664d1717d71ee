package compiler

import (
	"strings"
	"testing"
)

func TestCompileSimpleSelect(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE todo(id INTEGER PRIMARY KEY, name TEXT NOT NULL, completedOn INTEGER);`},
	}
	queries := []Source{
		{Name: "todo.sql", Text: `SELECT * FROM todo WHERE id = ?;`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if len(res.Statements) != 1 {
		t.Fatalf("len(Statements) = %d, want 1", len(res.Statements))
	}
	stmt := res.Statements[0]
	if stmt.Name != "todo" {
		t.Errorf("Name = %q, want %q (default name from file)", stmt.Name, "todo")
	}
	if stmt.Signature == nil {
		t.Fatalf("Signature is nil")
	}
	if len(stmt.Signature.Params) != 1 || stmt.Signature.Params[0].Name != "id" {
		t.Errorf("Params = %+v, want a single 'id' parameter", stmt.Signature.Params)
	}
	if stmt.SanitizedSource == "" {
		t.Errorf("SanitizedSource should not be empty")
	}
	if res.RunID.String() == "" {
		t.Errorf("RunID should be populated")
	}
}

func TestCompileMarkerBlocks(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE users(id INTEGER PRIMARY KEY, email TEXT NOT NULL);`},
	}
	queries := []Source{
		{Name: "users.sql", Text: `
-- name: GetUser :one
SELECT * FROM users WHERE id = ?;

-- name: ListUsers :many
SELECT * FROM users;

-- name: DeleteUser :exec
DELETE FROM users WHERE id = ?;
`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if len(res.Statements) != 3 {
		t.Fatalf("len(Statements) = %d, want 3: %+v", len(res.Statements), res.Statements)
	}
	byName := map[string]CompiledStatement{}
	for _, s := range res.Statements {
		byName[s.Name] = s
	}
	get, ok := byName["GetUser"]
	if !ok {
		t.Fatalf("GetUser block missing")
	}
	if get.Signature.Cardinality.String() != "one" {
		t.Errorf("GetUser cardinality = %s, want one (forced by :one)", get.Signature.Cardinality.String())
	}
	del, ok := byName["DeleteUser"]
	if !ok {
		t.Fatalf("DeleteUser block missing")
	}
	if del.Signature.Cardinality.String() != "none" {
		t.Errorf("DeleteUser cardinality = %s, want none (forced by :exec)", del.Signature.Cardinality.String())
	}
	if len(del.Signature.WritesTo) != 1 || del.Signature.WritesTo[0] != "users" {
		t.Errorf("DeleteUser WritesTo = %v, want [users]", del.Signature.WritesTo)
	}
}

func TestCompileDefineQueryEnvelope(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE todo(id INTEGER PRIMARY KEY, name TEXT NOT NULL);`},
	}
	queries := []Source{
		{Name: "queries.sql", Text: `
DEFINE QUERY GetTodo AS SELECT * FROM todo WHERE id = ?;
DEFINE QUERY ListTodos AS SELECT * FROM todo;
`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if len(res.Statements) != 2 {
		t.Fatalf("len(Statements) = %d, want 2: %+v", len(res.Statements), res.Statements)
	}
	names := map[string]bool{}
	for _, s := range res.Statements {
		names[s.Name] = true
	}
	if !names["GetTodo"] || !names["ListTodos"] {
		t.Errorf("expected GetTodo and ListTodos, got %+v", names)
	}
}

func TestCompileStatementBeforeFirstEnvelopeGetsDefaultName(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE todo(id INTEGER PRIMARY KEY, name TEXT NOT NULL);`},
	}
	queries := []Source{
		{Name: "mixed.sql", Text: `
SELECT * FROM todo;
DEFINE QUERY GetTodo AS SELECT * FROM todo WHERE id = ?;
`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if len(res.Statements) != 2 {
		t.Fatalf("len(Statements) = %d, want 2: %+v", len(res.Statements), res.Statements)
	}
	names := map[string]bool{}
	for _, s := range res.Statements {
		names[s.Name] = true
	}
	if !names["mixed"] || !names["GetTodo"] {
		t.Errorf("expected the leading statement under the default name plus GetTodo, got %+v", names)
	}
}

func TestCompileDDLInQueryFileIsDiagnosed(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE todo(id INTEGER PRIMARY KEY);`},
	}
	queries := []Source{
		{Name: "bad.sql", Text: `CREATE TABLE oops(id INTEGER);`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "DDL statement found in query file") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a diagnostic about DDL in a query file, got %+v", res.Diagnostics)
	}
}

func TestCompileDefineQueryInMigrationIsDiagnosed(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `DEFINE QUERY Oops AS SELECT 1;`},
	}
	res, err := Compile(migrations, nil)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "DEFINE QUERY block found in migration file") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a diagnostic about DEFINE QUERY in a migration, got %+v", res.Diagnostics)
	}
}

func TestSanitizeStripsCommentsAndNormalizesWhitespace(t *testing.T) {
	src := "SELECT  id,\n  -- a comment\n  name\nFROM todo WHERE id = :id;"
	got := sanitize("f.sql", src)
	if strings.Contains(got, "--") {
		t.Errorf("sanitize() left a comment in: %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("sanitize() should normalize newlines away: %q", got)
	}
	if !strings.Contains(got, ":id") {
		t.Errorf("sanitize() should preserve the bind parameter placeholder, got %q", got)
	}
}

func TestDumpYAMLIncludesSchemaAndStatements(t *testing.T) {
	migrations := []Source{
		{Name: "0001_init.sql", Text: `CREATE TABLE todo(id INTEGER PRIMARY KEY, name TEXT NOT NULL);`},
	}
	queries := []Source{
		{Name: "todo.sql", Text: `SELECT * FROM todo;`},
	}
	res, err := Compile(migrations, queries)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	out, err := res.DumpYAML()
	if err != nil {
		t.Fatalf("DumpYAML returned an error: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "todo") {
		t.Errorf("DumpYAML output missing table name: %s", text)
	}
	if !strings.Contains(text, "run_id") {
		t.Errorf("DumpYAML output missing run_id: %s", text)
	}
}
