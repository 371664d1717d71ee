// Command sqlsig is a thin driver over internal/compiler: it loads a
// sqlsig.toml project file, reads the migration and query files it names,
// compiles them, and reports diagnostics. Code generation from the
// resulting signatures is a separate concern; this binary exists only so
// the analyzer has a way to be invoked end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/wickwirew/sqlsig/internal/compiler"
	"github.com/wickwirew/sqlsig/internal/config"
	"github.com/wickwirew/sqlsig/internal/diag"
	"github.com/wickwirew/sqlsig/internal/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sqlsig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "sqlsig.toml", "path to the sqlsig project config")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	dumpYAML := fs.Bool("dump", false, "print a YAML snapshot of the compiled schema and statements")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.New(logging.Options{Verbose: *verbose, Writer: stderr})
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		return 1
	}
	baseDir := filepath.Dir(*configPath)

	migrationFiles, err := config.ResolveFiles(baseDir, cfg.Migrations)
	if err != nil {
		logger.Error("failed to resolve migration globs", slog.Any("error", err))
		return 1
	}
	queryFiles, err := config.ResolveFiles(baseDir, cfg.Queries)
	if err != nil {
		logger.Error("failed to resolve query globs", slog.Any("error", err))
		return 1
	}

	migrations, err := readSources(migrationFiles)
	if err != nil {
		logger.Error("failed to read migrations", slog.Any("error", err))
		return 1
	}

	queries, err := readQueryFilesConcurrently(ctx, queryFiles)
	if err != nil {
		logger.Error("failed to read query files", slog.Any("error", err))
		return 1
	}

	started := time.Now()
	result, err := compiler.Compile(migrations, queries)
	if err != nil {
		logger.Error("compile failed", slog.Any("error", err))
		return 1
	}

	errCount := reportDiagnostics(logger, result.Diagnostics)

	logger.Info("compiled",
		slog.String("run_id", result.RunID.String()),
		slog.String("statements", humanize.Comma(int64(len(result.Statements)))),
		slog.String("duration", humanize.RelTime(started, time.Now(), "", "")),
	)

	if *dumpYAML {
		out, err := result.DumpYAML()
		if err != nil {
			logger.Error("failed to render YAML snapshot", slog.Any("error", err))
			return 1
		}
		_, _ = stdout.Write(out)
	}

	if errCount > 0 {
		return 1
	}
	return 0
}

// readQueryFilesConcurrently reads every query file in parallel via an
// errgroup.Group, since file I/O is independent across disjoint inputs.
// Each file still goes through exactly one single-threaded
// compiler.Compile call; only the I/O here is concurrent.
func readQueryFilesConcurrently(ctx context.Context, paths []string) ([]compiler.Source, error) {
	out := make([]compiler.Source, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			out[i] = compiler.Source{Name: path, Text: string(text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readSources(paths []string) ([]compiler.Source, error) {
	out := make([]compiler.Source, 0, len(paths))
	for _, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, compiler.Source{Name: p, Text: string(text)})
	}
	return out, nil
}

// reportDiagnostics logs every diagnostic in the order they were produced
// and returns the number of Error-severity ones.
func reportDiagnostics(logger *slog.Logger, diags []diag.Diagnostic) int {
	errCount := 0
	for _, d := range diags {
		attrs := []any{slog.String("file", d.File), slog.Int("offset", int(d.PrimarySpan.Start))}
		switch d.Severity {
		case diag.Error:
			errCount++
			logger.Error(d.Message, attrs...)
		case diag.Warning:
			logger.Warn(d.Message, attrs...)
		default:
			logger.Info(d.Message, attrs...)
		}
	}
	return errCount
}
