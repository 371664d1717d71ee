package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadParsesMigrationsQueriesAndCustomTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqlsig.toml")
	writeFile(t, path, `
migrations = ["migrations/*.sql"]
queries = ["queries/*.sql"]

[[custom_types]]
sqlite_type = "NUMERIC"
tag = "money"
go_type = "decimal.Decimal"
go_import = "github.com/shopspring/decimal"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Migrations) != 1 || cfg.Migrations[0] != "migrations/*.sql" {
		t.Errorf("Migrations = %v", cfg.Migrations)
	}
	if len(cfg.Queries) != 1 || cfg.Queries[0] != "queries/*.sql" {
		t.Errorf("Queries = %v", cfg.Queries)
	}
	if len(cfg.CustomTypes) != 1 || cfg.CustomTypes[0].GoType != "decimal.Decimal" {
		t.Errorf("CustomTypes = %+v", cfg.CustomTypes)
	}
}

func TestLoadRequiresAtLeastOneMigrationAndQueryGlob(t *testing.T) {
	dir := t.TempDir()

	noMigrations := filepath.Join(dir, "no_migrations.toml")
	writeFile(t, noMigrations, `queries = ["queries/*.sql"]`)
	if _, err := Load(noMigrations); err == nil {
		t.Errorf("Load() with no migrations globs should fail")
	}

	noQueries := filepath.Join(dir, "no_queries.toml")
	writeFile(t, noQueries, `migrations = ["migrations/*.sql"]`)
	if _, err := Load(noQueries); err == nil {
		t.Errorf("Load() with no queries globs should fail")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/sqlsig.toml"); err == nil {
		t.Errorf("Load() of a missing file should fail")
	}
}

func TestResolveFilesExpandsSortsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "migrations", "0002_second.sql"), "-- second")
	writeFile(t, filepath.Join(dir, "migrations", "0001_first.sql"), "-- first")

	got, err := ResolveFiles(dir, []string{"migrations/*.sql", "migrations/0001_first.sql"})
	if err != nil {
		t.Fatalf("ResolveFiles() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "migrations", "0001_first.sql"),
		filepath.Join(dir, "migrations", "0002_second.sql"),
	}
	if len(got) != len(want) {
		t.Fatalf("ResolveFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveFilesErrorsOnPatternWithNoMatches(t *testing.T) {
	dir := t.TempDir()
	if _, err := ResolveFiles(dir, []string{"nope/*.sql"}); err == nil {
		t.Errorf("ResolveFiles() with a pattern matching nothing should fail")
	}
}
