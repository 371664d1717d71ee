package lexer

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/diag"
)

func scan(src string) []Token {
	bag := diag.NewBag()
	toks := Scan("fixture.sql", src, bag)
	// drop the trailing KindEOF sentinel; callers compare content tokens
	if len(toks) > 0 && toks[len(toks)-1].Kind == KindEOF {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanRecognizesEachTokenKind(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind Kind
		text string
	}{
		{"keyword", "SELECT", KindKeyword, "SELECT"},
		{"lowercase keyword normalizes", "select", KindKeyword, "SELECT"},
		{"bare ident", "users", KindIdent, "users"},
		{"double quoted ident", `"my col"`, KindIdent, `"my col"`},
		{"backtick ident", "`col`", KindIdent, "`col`"},
		{"bracket ident", "[col]", KindIdent, "[col]"},
		{"decimal int", "42", KindInt, "42"},
		{"underscored int", "1_000_000", KindInt, "1000000"},
		{"hex int", "0xFF", KindInt, "0xFF"},
		{"double", "3.14", KindDouble, "3.14"},
		{"leading dot double", ".5", KindDouble, ".5"},
		{"exponent double", "1e10", KindDouble, "1e10"},
		{"string", "'hi'", KindString, "hi"},
		{"string with doubled quote escape", "'it''s'", KindString, "it's"},
		{"two char punct", "<=", KindPunct, "<="},
		{"three char punct", "->>", KindPunct, "->>"},
		{"single char punct", "(", KindPunct, "("},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toks := scan(tc.src)
			if len(toks) != 1 {
				t.Fatalf("scan(%q) produced %d tokens, want 1: %+v", tc.src, len(toks), toks)
			}
			if toks[0].Kind != tc.kind {
				t.Errorf("Kind = %s, want %s", toks[0].Kind, tc.kind)
			}
			if toks[0].Text != tc.text {
				t.Errorf("Text = %q, want %q", toks[0].Text, tc.text)
			}
		})
	}
}

func TestScanUnknownCharacterEmitsInvalidAndDiagnostic(t *testing.T) {
	bag := diag.NewBag()
	toks := Scan("fixture.sql", "a # b", bag)
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for an unrecognized character")
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == KindInvalid && tok.Text == "#" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a KindInvalid token for '#', got %+v", toks)
	}
}

func TestScanSkipsLineAndBlockComments(t *testing.T) {
	toks := scan("a -- trailing comment\n/* block\ncomment */ b")
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(toks), toks)
	}
	if toks[0].Text != "a" || toks[1].Text != "b" {
		t.Errorf("tokens = %+v, want [a b]", toks)
	}
}

func TestScanNestedBlockComments(t *testing.T) {
	toks := scan("/* a /* b */ c */ SELECT 1")
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2 (SELECT 1): %+v", len(toks), toks)
	}
	if toks[0].Kind != KindKeyword || toks[0].Text != "SELECT" {
		t.Errorf("tokens = %+v, want [SELECT 1]", toks)
	}

	bag := diag.NewBag()
	Scan("fixture.sql", "/* a /* unterminated", bag)
	if !bag.HasErrors() {
		t.Errorf("expected a diagnostic for an unterminated nested block comment")
	}
}

func TestScanUnterminatedStringReportsDiagnostic(t *testing.T) {
	bag := diag.NewBag()
	Scan("fixture.sql", "'unterminated", bag)
	if !bag.HasErrors() {
		t.Errorf("expected a diagnostic for an unterminated string literal")
	}
}

// TestScanIsTotal checks a concatenation property: as long as no token
// straddles the split point, scanning two fragments separately and
// concatenating their kind sequences agrees with scanning the concatenation
// directly. The lexer never refuses input outright (an unrecognized byte
// degrades to KindInvalid, not a scan failure), so this also stands in for
// lexer totality.
func TestScanIsTotal(t *testing.T) {
	fragments := [][2]string{
		{"SELECT * FROM t WHERE x ", "= 1;"},
		{"a + b ", "* c"},
		{"'hello world' ", "'again'"},
		{"CREATE TABLE t(id ", "INTEGER);"},
		{"x -> 'a' ", "-> 'b'"},
	}
	for _, f := range fragments {
		left, right := f[0], f[1]
		t.Run(left+"|"+right, func(t *testing.T) {
			combinedKinds := kinds(scan(left + right))
			splitKinds := append(kinds(scan(left)), kinds(scan(right))...)
			if len(combinedKinds) != len(splitKinds) {
				t.Fatalf("token count differs: combined=%d split=%d", len(combinedKinds), len(splitKinds))
			}
			for i := range combinedKinds {
				if combinedKinds[i] != splitKinds[i] {
					t.Errorf("token %d kind differs: combined=%s split=%s", i, combinedKinds[i], splitKinds[i])
				}
			}
		})
	}
}

func TestScanSpansCoverExactText(t *testing.T) {
	src := "SELECT id FROM users"
	bag := diag.NewBag()
	toks := Scan("fixture.sql", src, bag)
	for _, tok := range toks {
		if tok.Kind == KindEOF {
			continue
		}
		got := src[tok.Span.Start:tok.Span.End]
		if tok.Kind == KindKeyword {
			// keyword text is normalized to upper case; the source span still
			// covers the original spelling.
			continue
		}
		if got != tok.Text {
			t.Errorf("span for token %q covers %q", tok.Text, got)
		}
	}
}
