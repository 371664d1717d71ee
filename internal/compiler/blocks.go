package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wickwirew/sqlsig/internal/checker"
)

// Command names an explicit `:one`/`:many`/`:exec`/`:execresult` tag on a
// `-- name:` marker comment. Unlike the LIMIT-1/aggregate cardinality
// heuristic the checker applies by default, an explicit command always
// wins: :one always yields CardinalityOne, :exec and :execresult always
// yield CardinalityNone regardless of a RETURNING clause.
type Command int

const (
	CommandUnknown Command = iota
	CommandOne
	CommandMany
	CommandExec
	CommandExecResult
)

func parseCommand(tag string) (Command, bool) {
	switch strings.ToLower(tag) {
	case ":one":
		return CommandOne, true
	case ":many":
		return CommandMany, true
	case ":exec":
		return CommandExec, true
	case ":execresult":
		return CommandExecResult, true
	default:
		return CommandUnknown, false
	}
}

// overrideCardinality returns the cardinality an explicit command forces,
// and whether it forces one at all.
func (c Command) overrideCardinality() (checker.Cardinality, bool) {
	switch c {
	case CommandOne:
		return checker.CardinalityOne, true
	case CommandExec, CommandExecResult:
		return checker.CardinalityNone, true
	default:
		return 0, false
	}
}

// markerBlock is one `-- name: <ident> :<command>` delimited query, sliced
// out of a query file by byte offset so diagnostic spans reported against
// the slice remain valid against the original file.
type markerBlock struct {
	Name        string
	Command     Command
	SQL         string
	Doc         string
	StartOffset int
	EndOffset   int
}

type lineInfo struct {
	start, end, next int
	text             string
	line             int
}

func splitLines(text string) []lineInfo {
	if len(text) == 0 {
		return nil
	}
	lines := make([]lineInfo, 0, strings.Count(text, "\n")+1)
	idx, lineNo := 0, 1
	for idx < len(text) {
		start := idx
		for idx < len(text) && text[idx] != '\n' {
			idx++
		}
		end := idx
		next := idx
		if next < len(text) {
			next++
		}
		lines = append(lines, lineInfo{start: start, end: end, next: next, text: text[start:end], line: lineNo})
		idx = next
		lineNo++
	}
	return lines
}

// splitMarkerBlocks recognizes the `-- name: <ident> :<command>` convention.
// It returns (nil, nil) when the file contains no markers at all, signaling
// the caller should fall back to the `DEFINE QUERY` envelope form instead.
func splitMarkerBlocks(path, src string) ([]markerBlock, error) {
	lines := splitLines(src)
	type marker struct {
		name, docStart string
		command        Command
		contentStart   int
		lineIndex      int
		column         int
		doc            []string
		docFrom        int
	}
	var markers []marker
	for idx, ln := range lines {
		trimmedLeft := strings.TrimLeft(ln.text, "\t ")
		if !strings.HasPrefix(trimmedLeft, "--") {
			continue
		}
		content := strings.TrimSpace(trimmedLeft[2:])
		lower := strings.ToLower(content)
		if !strings.HasPrefix(lower, "name:") {
			continue
		}
		rest := strings.TrimSpace(content[len("name:"):])
		fields := strings.Fields(rest)
		column := len(ln.text) - len(trimmedLeft) + 1
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d:%d: expected \"-- name: <ident> :<command>\"", path, ln.line, column)
		}
		name := fields[0]
		if !isIdent(name) {
			return nil, fmt.Errorf("%s:%d:%d: invalid block name %q", path, ln.line, column, name)
		}
		cmd, ok := parseCommand(fields[1])
		if !ok {
			return nil, fmt.Errorf("%s:%d:%d: unknown command %q", path, ln.line, column, fields[1])
		}
		doc, docFrom := collectDoc(lines, idx)
		markers = append(markers, marker{
			name:         name,
			command:      cmd,
			contentStart: ln.next,
			lineIndex:    idx,
			doc:          doc,
			docFrom:      docFrom,
		})
	}
	if len(markers) == 0 {
		return nil, nil
	}
	blocks := make([]markerBlock, 0, len(markers))
	for i, m := range markers {
		end := len(src)
		if i+1 < len(markers) {
			end = markers[i+1].docFrom
		}
		start := m.contentStart
		if start > end {
			start = end
		}
		blocks = append(blocks, markerBlock{
			Name:        m.name,
			Command:     m.command,
			SQL:         strings.TrimRightFunc(src[start:end], unicode.IsSpace),
			Doc:         strings.Join(m.doc, "\n"),
			StartOffset: start,
			EndOffset:   end,
		})
	}
	return blocks, nil
}

// collectDoc walks upward from a marker line collecting a contiguous run of
// plain `--` comment lines immediately preceding it as the block's doc
// string, stopping at the first blank line, non-comment line, or another
// marker.
func collectDoc(lines []lineInfo, markerIdx int) ([]string, int) {
	if markerIdx == 0 {
		return nil, lines[markerIdx].start
	}
	var doc []string
	from := lines[markerIdx].start
	for i := markerIdx - 1; i >= 0; i-- {
		text := lines[i].text
		if strings.TrimSpace(text) == "" {
			break
		}
		trimmedLeft := strings.TrimLeft(text, "\t ")
		if !strings.HasPrefix(trimmedLeft, "--") {
			break
		}
		content := strings.TrimSpace(trimmedLeft[2:])
		if strings.HasPrefix(strings.ToLower(content), "name:") {
			break
		}
		doc = append(doc, content)
		from = lines[i].start
	}
	for l, r := 0, len(doc)-1; l < r; l, r = l+1, r-1 {
		doc[l], doc[r] = doc[r], doc[l]
	}
	return doc, from
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
