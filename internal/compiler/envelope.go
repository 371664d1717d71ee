package compiler

import (
	"fmt"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// envelopeHeader matches one `DEFINE QUERY <name> AS` marker. Pos/EndPos are
// participle's automatic position-capture fields: EndPos lands right after
// the "AS" keyword, which is exactly the byte offset the statement body
// slice for this marker starts at.
//
//nolint:govet // participle struct tags are DSL, not reflect tags
type envelopeHeader struct {
	Name   string `"DEFINE" "QUERY" @Ident "AS"`
	Pos    lexer.Position
	EndPos lexer.Position
}

// envelopePart is either a header or one token of whatever SQL/comment text
// surrounds it; envelopeLexer tokenizes the entire file so participle has
// something to assign every byte to, but only Header parts are ever
// inspected; the body text itself is recovered later by slicing the raw
// source between two header offsets, never reconstructed from tokens.
//
//nolint:govet // participle struct tags are DSL, not reflect tags
type envelopePart struct {
	Header *envelopeHeader `@@`
	Other  string          `| @(Ident | String | Other)`
}

//nolint:govet // participle struct tags are DSL, not reflect tags
type envelopeFile struct {
	Parts []*envelopePart `@@*`
}

var envelopeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Other", Pattern: `[\s\S]`},
})

var (
	envelopeParserOnce sync.Once
	envelopeParserInst *participle.Parser[envelopeFile]
	envelopeParserErr  error
)

func newEnvelopeParser() (*participle.Parser[envelopeFile], error) {
	envelopeParserOnce.Do(func() {
		envelopeParserInst, envelopeParserErr = participle.Build[envelopeFile](
			participle.Lexer(envelopeLexer),
			participle.CaseInsensitive("DEFINE", "QUERY", "AS"),
			participle.Elide("Whitespace"),
			participle.UseLookahead(4),
		)
		if envelopeParserErr != nil {
			envelopeParserErr = fmt.Errorf("failed to build query envelope parser: %w", envelopeParserErr)
		}
	})
	return envelopeParserInst, envelopeParserErr
}

// queryEnvelope is one `DEFINE QUERY <name> AS <stmt>;` block, or the
// implicit whole-file envelope used when a query file has no markers at
// all.
type queryEnvelope struct {
	Name string
	SQL  string
}

// splitEnvelopes locates every `DEFINE QUERY` marker in src using
// envelopeParser purely to find marker boundaries, then slices the original
// source between consecutive markers by byte offset, the same technique
// markerBlock splitting uses, so diagnostics raised while checking the
// sliced SQL keep spans valid against the real file. A statement that
// appears before the first marker, or a file with no markers at all, is
// attached to defaultName.
func splitEnvelopes(path, defaultName, src string) ([]queryEnvelope, error) {
	parser, err := newEnvelopeParser()
	if err != nil {
		return nil, err
	}
	file, err := parser.ParseString(path, src)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing query envelope: %w", path, err)
	}
	var headers []*envelopeHeader
	for _, p := range file.Parts {
		if p.Header != nil {
			headers = append(headers, p.Header)
		}
	}
	if len(headers) == 0 {
		return []queryEnvelope{{Name: defaultName, SQL: src}}, nil
	}
	var envelopes []queryEnvelope
	if lead := src[:headers[0].Pos.Offset]; nonBlank(lead) {
		envelopes = append(envelopes, queryEnvelope{Name: defaultName, SQL: lead})
	}
	for i, h := range headers {
		end := len(src)
		if i+1 < len(headers) {
			end = headers[i+1].Pos.Offset
		}
		start := h.EndPos.Offset
		if start > end {
			start = end
		}
		envelopes = append(envelopes, queryEnvelope{Name: h.Name, SQL: src[start:end]})
	}
	return envelopes, nil
}

func nonBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}
