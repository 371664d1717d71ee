// Package compiler ties the schema builder, parser and checker into a
// single entry point: migrations in, query files in, one Signature per
// statement out.
package compiler

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/checker"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/logging"
	"github.com/wickwirew/sqlsig/internal/parser"
	"github.com/wickwirew/sqlsig/internal/schema"
	"github.com/wickwirew/sqlsig/internal/srcmap"
)

// Source is one named input: a migration file or a query file. Name is used
// for diagnostics and, for a query file with no block markers, as the
// statement's default name.
type Source struct {
	Name string
	Text string
}

// CompiledStatement is one statement's complete analysis, ready for an
// emitter: its name, the comment-stripped/whitespace-normalized source
// (sanitizedSource), its resolved Signature, and the parsed syntax tree it
// was checked from.
type CompiledStatement struct {
	Name            string
	SanitizedSource string
	Signature       *checker.Signature
	SyntaxRoot      ast.Stmt
}

// Result is the output of one Compile call.
type Result struct {
	Schema      *schema.Schema
	Statements  []CompiledStatement
	Diagnostics []diag.Diagnostic
	RunID       uuid.UUID
}

// Compile applies migrations in order to build a schema, then parses and
// type-checks every query source against that fixed schema. A compilation
// is single-threaded and self-contained; running several Compile calls
// concurrently on disjoint inputs is left to the caller (cmd/sqlsig reads
// its query files concurrently with errgroup, then makes one Compile call).
func Compile(migrations, queries []Source) (*Result, error) {
	runID := uuid.New()
	logger := logging.WithRunID(slog.Default(), runID.String())
	logger.Debug("compile starting", slog.Int("migrations", len(migrations)), slog.Int("query_files", len(queries)))

	bag := diag.NewBag()
	builder := schema.NewBuilder(bag)
	for _, m := range migrations {
		if looksLikeQueryEnvelope(m.Text) {
			bag.Errorf(m.Name, srcmap.Span{}, "DEFINE QUERY block found in migration file %q", m.Name)
		}
		builder.ApplyMigration(m.Name, m.Text)
	}
	sch := builder.Schema()
	logger.Debug("schema built", slog.Int("tables", len(sch.Tables)))

	var stmts []CompiledStatement
	for _, q := range queries {
		stmts = append(stmts, compileQueryFile(sch, bag, q)...)
	}

	errCount := 0
	for _, d := range bag.All() {
		if d.Severity == diag.Error {
			errCount++
		}
	}
	logger.Debug("compile finished", slog.Int("statements", len(stmts)), slog.Int("errors", errCount))

	return &Result{
		Schema:      sch,
		Statements:  stmts,
		Diagnostics: bag.All(),
		RunID:       runID,
	}, nil
}

func looksLikeQueryEnvelope(text string) bool {
	return strings.Contains(strings.ToUpper(text), "DEFINE QUERY")
}

// compileQueryFile splits one query file into statements, preferring the
// `-- name: <ident> :<command>` marker convention when present and falling
// back to `DEFINE QUERY <name> AS <stmt>;` envelopes, or the whole file as
// one statement under its default name when neither appears.
func compileQueryFile(sch *schema.Schema, bag *diag.Bag, q Source) []CompiledStatement {
	markers, err := splitMarkerBlocks(q.Name, q.Text)
	if err != nil {
		bag.Errorf(q.Name, srcmap.Span{}, "%s", err.Error())
		return nil
	}
	if len(markers) > 0 {
		out := make([]CompiledStatement, 0, len(markers))
		for _, m := range markers {
			if cs := compileOne(sch, bag, q.Name, m.Name, m.SQL, &m.Command); cs != nil {
				out = append(out, *cs)
			}
		}
		return out
	}

	defaultName := defaultQueryName(q.Name)
	envelopes, err := splitEnvelopes(q.Name, defaultName, q.Text)
	if err != nil {
		bag.Errorf(q.Name, srcmap.Span{}, "%s", err.Error())
		return nil
	}
	out := make([]CompiledStatement, 0, len(envelopes))
	for _, e := range envelopes {
		if cs := compileOne(sch, bag, q.Name, e.Name, e.SQL, nil); cs != nil {
			out = append(out, *cs)
		}
	}
	return out
}

func defaultQueryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// compileOne parses, classifies, checks and sanitizes a single statement's
// source text. cmd is non-nil only for marker blocks, which carry an
// explicit command overriding the checker's cardinality heuristic.
func compileOne(sch *schema.Schema, bag *diag.Bag, file, name, src string, cmd *Command) *CompiledStatement {
	stmts := parser.Parse(file, src, bag)
	if len(stmts) == 0 {
		return nil
	}
	if len(stmts) > 1 {
		bag.Warnf(file, stmts[1].Span(), "statement %q contains more than one SQL statement; only the first is compiled", name)
	}
	stmt := stmts[0]

	if isDDL(stmt) {
		bag.Errorf(file, stmt.Span(), "DDL statement found in query file %q; DDL belongs in a migration", file)
	}

	c := checker.New(sch, bag, file)
	sig := c.Check(stmt)
	if sig == nil {
		return &CompiledStatement{Name: name, SanitizedSource: sanitize(file, src), SyntaxRoot: stmt}
	}

	if cmd != nil {
		if card, ok := cmd.overrideCardinality(); ok {
			sig.Cardinality = card
		}
		if _, isSelect := stmt.(*ast.Select); !isSelect && (*cmd == CommandOne || *cmd == CommandMany) {
			bag.Errorf(file, stmt.Span(), "query %q is tagged %s but is not a read statement", name, cmdTag(*cmd))
		}
	}

	return &CompiledStatement{
		Name:            name,
		SanitizedSource: sanitize(file, src),
		Signature:       sig,
		SyntaxRoot:      stmt,
	}
}

func cmdTag(c Command) string {
	switch c {
	case CommandOne:
		return ":one"
	case CommandMany:
		return ":many"
	case CommandExec:
		return ":exec"
	case CommandExecResult:
		return ":execresult"
	default:
		return ":unknown"
	}
}

func isDDL(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.CreateTable, *ast.AlterTable, *ast.CreateIndex, *ast.Drop, *ast.CreateView, *ast.CreateTrigger:
		return true
	default:
		return false
	}
}
