// Package config loads and validates the sqlsig project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// CustomTypeMapping records how a declared SQLite type (or an `AS <tag>`
// column annotation) should be rendered by a downstream emitter. sqlsig
// itself never consumes this beyond passing it through on Config; code
// generation is out of scope.
type CustomTypeMapping struct {
	SQLiteType string `toml:"sqlite_type"`
	Tag        string `toml:"tag"`
	GoType     string `toml:"go_type"`
	GoImport   string `toml:"go_import"`
}

// Config mirrors the expected sqlsig.toml schema: glob patterns locating
// migration and query files, plus optional custom type hints for an
// emitter. Both Migrations and Queries are resolved in the order the globs
// are listed, then lexically within a glob, since migrations must apply in
// a stable, reproducible order.
type Config struct {
	Migrations  []string            `toml:"migrations"`
	Queries     []string            `toml:"queries"`
	CustomTypes []CustomTypeMapping `toml:"custom_types"`
}

// Load reads and parses a sqlsig.toml file at path. It does not resolve the
// glob patterns; call ResolveFiles for that once a Config is loaded.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if len(cfg.Migrations) == 0 {
		return cfg, fmt.Errorf("%s: migrations must include at least one glob pattern", path)
	}
	if len(cfg.Queries) == 0 {
		return cfg, fmt.Errorf("%s: queries must include at least one glob pattern", path)
	}
	return cfg, nil
}

// ResolveFiles expands patterns (each resolved relative to baseDir) into an
// ordered, deduplicated list of file paths.
func ResolveFiles(baseDir string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(baseDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
