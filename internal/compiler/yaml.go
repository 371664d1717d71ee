package compiler

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wickwirew/sqlsig/internal/schema"
)

// yamlColumn is a flattened, string-typed rendering of a schema.Column.
// DumpYAML's output is a stable debug snapshot, not a wire format, so types
// are rendered through Type.String() rather than round-tripped structurally.
type yamlColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlTable struct {
	Name       string       `yaml:"name"`
	Kind       string       `yaml:"kind"`
	Columns    []yamlColumn `yaml:"columns"`
	PrimaryKey []string     `yaml:"primary_key,omitempty"`
}

type yamlParam struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name,omitempty"`
	Type  string `yaml:"type"`
}

type yamlStatement struct {
	Name            string       `yaml:"name"`
	SanitizedSource string       `yaml:"sanitized_source"`
	Cardinality     string       `yaml:"cardinality"`
	Params          []yamlParam  `yaml:"params,omitempty"`
	Output          []yamlColumn `yaml:"output,omitempty"`
	WatchedTables   []string     `yaml:"watched_tables,omitempty"`
	WritesTo        []string     `yaml:"writes_to,omitempty"`
}

type yamlResult struct {
	RunID      string          `yaml:"run_id"`
	Tables     []yamlTable     `yaml:"tables"`
	Statements []yamlStatement `yaml:"statements"`
}

// DumpYAML renders a Result as a stable, human-diffable snapshot for tests
// and tooling. It is an additive debug surface, not part of the emitter
// contract proper.
func (r *Result) DumpYAML() ([]byte, error) {
	out := yamlResult{RunID: r.RunID.String()}
	names := make([]string, 0, len(r.Schema.Tables))
	for q := range r.Schema.Tables {
		names = append(names, q.Name)
	}
	sort.Strings(names)
	for _, n := range names {
		t, ok := r.Schema.Lookup(schema.QualifiedName{Name: n})
		if !ok {
			continue
		}
		out.Tables = append(out.Tables, dumpTable(t))
	}
	for _, cs := range r.Statements {
		out.Statements = append(out.Statements, dumpStatement(cs))
	}
	return yaml.Marshal(out)
}

func kindString(k schema.Kind) string {
	switch k {
	case schema.FTS5:
		return "fts5"
	case schema.View:
		return "view"
	case schema.Virtual:
		return "virtual"
	default:
		return "normal"
	}
}

func dumpTable(t *schema.Table) yamlTable {
	yt := yamlTable{Name: t.Name, Kind: kindString(t.Kind), PrimaryKey: t.PrimaryKey}
	for _, c := range t.Columns {
		yt.Columns = append(yt.Columns, yamlColumn{Name: c.Name, Type: c.Type.String()})
	}
	return yt
}

func dumpStatement(cs CompiledStatement) yamlStatement {
	ys := yamlStatement{Name: cs.Name, SanitizedSource: cs.SanitizedSource}
	if cs.Signature == nil {
		return ys
	}
	ys.Cardinality = cs.Signature.Cardinality.String()
	ys.WatchedTables = cs.Signature.WatchedTables
	ys.WritesTo = cs.Signature.WritesTo
	for _, p := range cs.Signature.Params {
		ys.Params = append(ys.Params, yamlParam{Index: p.Index, Name: p.Name, Type: p.Type.String()})
	}
	for _, oc := range cs.Signature.Output {
		ys.Output = append(ys.Output, yamlColumn{Name: oc.Name, Type: oc.Type.String()})
	}
	return ys
}
