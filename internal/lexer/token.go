// Package lexer scans SQLite source text into a forward-only token stream.
// It is the single source of truth for literal syntax; the parser never
// re-derives lexical rules from raw bytes.
package lexer

import "github.com/wickwirew/sqlsig/internal/srcmap"

// Kind classifies a scanned token.
type Kind int

const (
	// KindEOF marks the logical end of input.
	KindEOF Kind = iota
	// KindInvalid is an unrecognized character, emitted alongside a diagnostic.
	KindInvalid
	// KindKeyword is a reserved word, normalized to upper case in Text.
	KindKeyword
	// KindIdent is a bare or quoted identifier. Quoting is preserved in Text;
	// use Unquote to strip it.
	KindIdent
	// KindInt is a decimal or hex integer literal.
	KindInt
	// KindDouble is a floating point literal.
	KindDouble
	// KindString is a single-quoted string literal with its quotes stripped
	// and '' escapes resolved in Text.
	KindString
	// KindPunct is an operator or punctuation symbol; Text holds the exact
	// spelling ("<=", "->>", ";", ...).
	KindPunct
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindInvalid:
		return "Invalid"
	case KindKeyword:
		return "Keyword"
	case KindIdent:
		return "Ident"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindPunct:
		return "Punct"
	default:
		return "Kind(?)"
	}
}

// Token is a single lexical unit together with its source span.
type Token struct {
	Kind Kind
	Text string
	Span srcmap.Span
}

// IsPunct reports whether the token is punctuation with the given spelling.
func (t Token) IsPunct(text string) bool {
	return t.Kind == KindPunct && t.Text == text
}

// IsKeyword reports whether the token is the given keyword (case already
// normalized to upper case by the lexer).
func (t Token) IsKeyword(word string) bool {
	return t.Kind == KindKeyword && t.Text == word
}

// Unquote strips identifier quoting (", `, []) and unescapes doubled quote
// characters, returning the identifier's logical name.
func Unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	switch text[0] {
	case '"':
		if text[len(text)-1] != '"' {
			return text
		}
		return replaceAll(text[1:len(text)-1], `""`, `"`)
	case '`':
		if text[len(text)-1] != '`' {
			return text
		}
		return replaceAll(text[1:len(text)-1], "``", "`")
	case '[':
		if text[len(text)-1] != ']' {
			return text
		}
		return text[1 : len(text)-1]
	default:
		return text
	}
}

func replaceAll(s, old, new string) string {
	if old == "" {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if i+len(old) <= len(s) && s[i:i+len(old)] == old {
			out = append(out, new...)
			i += len(old)
			continue
		}
		out = append(out, s[i])
		i++
	}
	return string(out)
}

// Keywords is the closed set of SQLite reserved words this module recognizes.
// Lookup is case-insensitive; Token.Text for a keyword token is always the
// upper-case canonical spelling.
var Keywords = buildKeywordSet(
	"ABORT", "ACTION", "ADD", "AFTER", "ALL", "ALTER", "ANALYZE", "AND", "AS", "ASC",
	"ATTACH", "AUTOINCREMENT", "BEFORE", "BEGIN", "BETWEEN", "BY", "CASCADE", "CASE",
	"CAST", "CHECK", "COLLATE", "COLUMN", "COMMIT", "CONFLICT", "CONSTRAINT", "CREATE",
	"CROSS", "CURRENT", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP", "DATABASE",
	"DEFAULT", "DEFERRABLE", "DEFERRED", "DELETE", "DESC", "DETACH", "DISTINCT", "DO",
	"DROP", "EACH", "ELSE", "END", "ESCAPE", "EXCEPT", "EXCLUSIVE", "EXISTS", "EXPLAIN",
	"FAIL", "FILTER", "FOLLOWING", "FOR", "FOREIGN", "FROM", "FULL", "GENERATED", "GLOB",
	"GROUP", "GROUPS", "HAVING", "IF", "IGNORE", "IMMEDIATE", "IN", "INDEX", "INDEXED",
	"INITIALLY", "INNER", "INSERT", "INSTEAD", "INTERSECT", "INTO", "IS", "ISNULL",
	"JOIN", "KEY", "LEFT", "LIKE", "LIMIT", "MATCH", "MATERIALIZED", "NATURAL", "NO",
	"NOT", "NOTHING", "NOTNULL", "NULL", "OF", "OFFSET", "ON", "OR", "ORDER", "OTHERS",
	"OUTER", "OVER", "PARTITION", "PLAN", "PRAGMA", "PRECEDING", "PRIMARY", "QUERY",
	"RAISE", "RANGE", "RECURSIVE", "REFERENCES", "REGEXP", "REINDEX", "RELEASE",
	"RENAME", "REPLACE", "RESTRICT", "RETURNING", "RIGHT", "ROLLBACK", "ROW", "ROWS",
	"SAVEPOINT", "SELECT", "SET", "STORED", "STRICT", "TABLE", "TEMP", "TEMPORARY",
	"THEN", "TIES", "TO", "TRANSACTION", "TRIGGER", "UNBOUNDED", "UNION", "UNIQUE",
	"UPDATE", "USING", "VACUUM", "VALUES", "VIEW", "VIRTUAL", "WHEN", "WHERE", "WINDOW",
	"WITH", "WITHOUT",
)

func buildKeywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsKeyword reports whether upper is a recognized keyword. Callers must
// upper-case the candidate first.
func IsKeyword(upper string) bool {
	_, ok := Keywords[upper]
	return ok
}
