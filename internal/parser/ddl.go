package parser

import (
	"strings"

	"github.com/wickwirew/sqlsig/internal/ast"
	"github.com/wickwirew/sqlsig/internal/lexer"
)

// parseCreate dispatches on the token following CREATE [TEMP|TEMPORARY]
// [UNIQUE] to the right DDL form.
func (s *state) parseCreate(start int, doc string) ast.Stmt {
	s.take() // CREATE
	s.takeIfKeyword("TEMP")
	s.takeIfKeyword("TEMPORARY")
	switch {
	case s.peek().IsKeyword("TABLE"):
		return s.parseCreateTable(start, doc)
	case s.peek().IsKeyword("VIRTUAL"):
		return s.parseCreateVirtualTable(start, doc)
	case s.peek().IsKeyword("UNIQUE") || s.peek().IsKeyword("INDEX"):
		return s.parseCreateIndex(start)
	case s.peek().IsKeyword("VIEW"):
		return s.parseCreateView(start, doc)
	case s.peek().IsKeyword("TRIGGER"):
		return s.parseCreateTrigger(start)
	default:
		s.errf("expected TABLE, INDEX, VIEW, TRIGGER, or VIRTUAL TABLE after CREATE")
		s.synchronize()
		return nil
	}
}

func (s *state) parseIfNotExists() bool {
	if _, ok := s.takeIfKeyword("IF"); ok {
		s.consumeExpectedKeyword("NOT")
		s.consumeExpectedKeyword("EXISTS")
		return true
	}
	return false
}

func (s *state) parseIfExists() bool {
	if _, ok := s.takeIfKeyword("IF"); ok {
		s.consumeExpectedKeyword("EXISTS")
		return true
	}
	return false
}

func (s *state) parseCreateTable(start int, doc string) ast.Stmt {
	s.consumeExpectedKeyword("TABLE")
	ifNotExists := s.parseIfNotExists()
	name := s.parseQualifiedName()
	ct := ast.NewCreateTable(s.nextID(), s.spanFrom(start))
	ct.Name = name.name
	ct.IfNotExists = ifNotExists
	ct.Doc = doc
	s.consumeExpectedPunct("(")
	for {
		if s.isTableConstraintStart() {
			s.parseTableConstraint(ct)
		} else {
			ct.Columns = append(ct.Columns, s.parseColumnDef())
		}
		if _, ok := s.takeIfPunct(","); ok {
			continue
		}
		break
	}
	s.consumeExpectedPunct(")")
	if _, ok := s.takeIfKeyword("WITHOUT"); ok {
		// ROWID is not in the keyword table, so it arrives as an identifier.
		if t := s.peek(); t.Kind == lexer.KindIdent && strings.EqualFold(t.Text, "ROWID") {
			s.take()
		} else {
			s.errf("expected ROWID, found %s", s.describe(t))
		}
		ct.WithoutRowID = true
	}
	if _, ok := s.takeIfKeyword("STRICT"); ok {
		ct.Strict = true
	}
	return ct
}

func (s *state) isTableConstraintStart() bool {
	t := s.peek()
	return t.IsKeyword("PRIMARY") || t.IsKeyword("UNIQUE") || t.IsKeyword("FOREIGN") ||
		t.IsKeyword("CHECK") || t.IsKeyword("CONSTRAINT")
}

func (s *state) parseTableConstraint(ct *ast.CreateTable) {
	s.takeIfKeyword("CONSTRAINT")
	if s.peek().Kind == lexer.KindIdent {
		s.take() // constraint name, not modeled
	}
	switch {
	case s.peek().IsKeyword("PRIMARY"):
		s.take()
		s.consumeExpectedKeyword("KEY")
		s.consumeExpectedPunct("(")
		pk := ast.PrimaryKeyDef{Columns: s.parseIndexedColumnList()}
		s.consumeExpectedPunct(")")
		s.skipConflictClause()
		ct.PrimaryKeys = append(ct.PrimaryKeys, pk)
	case s.peek().IsKeyword("UNIQUE"):
		s.take()
		s.consumeExpectedPunct("(")
		u := ast.UniqueDef{Columns: s.parseIndexedColumnList()}
		s.consumeExpectedPunct(")")
		s.skipConflictClause()
		ct.Uniques = append(ct.Uniques, u)
	case s.peek().IsKeyword("FOREIGN"):
		s.take()
		s.consumeExpectedKeyword("KEY")
		s.consumeExpectedPunct("(")
		fk := ast.ForeignKeyDef{Columns: s.parseIndexedColumnList()}
		s.consumeExpectedPunct(")")
		s.consumeExpectedKeyword("REFERENCES")
		ref := s.parseQualifiedName()
		fk.RefTable = ref.name
		if _, ok := s.takeIfPunct("("); ok {
			fk.RefColumns = s.parseIndexedColumnList()
			s.consumeExpectedPunct(")")
		}
		s.skipForeignKeyActions()
		ct.ForeignKeys = append(ct.ForeignKeys, fk)
	case s.peek().IsKeyword("CHECK"):
		s.take()
		s.consumeExpectedPunct("(")
		s.parseExpr(1)
		s.consumeExpectedPunct(")")
	}
}

func (s *state) parseIndexedColumnList() []string {
	var cols []string
	for {
		ct, ok := s.consumeExpectedIdent()
		if !ok {
			break
		}
		cols = append(cols, unquoteIdent(ct))
		s.takeIfKeyword("ASC")
		s.takeIfKeyword("DESC")
		if _, ok := s.takeIfPunct(","); ok {
			continue
		}
		break
	}
	return cols
}

func (s *state) skipConflictClause() {
	if _, ok := s.takeIfKeyword("ON"); ok {
		s.consumeExpectedKeyword("CONFLICT")
		s.take() // ROLLBACK/ABORT/FAIL/IGNORE/REPLACE
	}
}

func (s *state) skipForeignKeyActions() {
	for {
		switch {
		case s.peek().IsKeyword("ON"):
			s.take()
			s.take() // DELETE/UPDATE
			switch {
			case s.peek().IsKeyword("CASCADE"), s.peek().IsKeyword("RESTRICT"):
				s.take()
			case s.peek().IsKeyword("NO"):
				s.take()
				s.consumeExpectedKeyword("ACTION")
			case s.peek().IsKeyword("SET"):
				s.take()
				s.take() // NULL/DEFAULT
			}
		case s.peek().IsKeyword("MATCH"):
			s.take()
			s.take()
		case s.peek().IsKeyword("DEFERRABLE"):
			s.take()
			s.takeIfKeyword("INITIALLY")
			if s.peek().IsKeyword("DEFERRED") || s.peek().IsKeyword("IMMEDIATE") {
				s.take()
			}
		case s.peek().IsKeyword("NOT") && s.peek2().IsKeyword("DEFERRABLE"):
			s.take()
			s.take()
		default:
			return
		}
	}
}

func (s *state) parseColumnDef() ast.ColumnDef {
	nameTok, _ := s.consumeExpectedIdent()
	col := ast.ColumnDef{Name: unquoteIdent(nameTok)}
	if s.isTypeNameStart() {
		col.TypeName = s.parseTypeName()
		// A bare `AS <ident>` immediately after the type (not `AS (`, which
		// is a generated-column expression) brands the column with a
		// user-visible custom type tag carried through to the emitter.
		if s.peek().IsKeyword("AS") && !s.peek2().IsPunct("(") {
			s.take()
			if nt, ok := s.consumeExpectedIdent(); ok {
				col.CustomTag = nt.Text
			}
		}
	}
	for {
		switch {
		case s.peek().IsKeyword("NOT"):
			s.take()
			s.consumeExpectedKeyword("NULL")
			col.NotNull = true
			s.skipConflictClause()
		case s.peek().IsKeyword("NULL"):
			s.take()
		case s.peek().IsKeyword("PRIMARY"):
			s.take()
			s.consumeExpectedKeyword("KEY")
			col.PrimaryKey = true
			s.takeIfKeyword("ASC")
			s.takeIfKeyword("DESC")
			s.skipConflictClause()
			s.takeIfKeyword("AUTOINCREMENT")
		case s.peek().IsKeyword("UNIQUE"):
			s.take()
			col.Unique = true
			s.skipConflictClause()
		case s.peek().IsKeyword("DEFAULT"):
			s.take()
			col.HasDefault = true
			if _, ok := s.takeIfPunct("("); ok {
				col.Default = s.parseExpr(1)
				s.consumeExpectedPunct(")")
			} else {
				col.Default = s.parseDefaultLiteral()
			}
		case s.peek().IsKeyword("COLLATE"):
			s.take()
			s.consumeExpectedIdent()
		case s.peek().IsKeyword("REFERENCES"):
			s.take()
			s.parseQualifiedName()
			if _, ok := s.takeIfPunct("("); ok {
				s.parseIndexedColumnList()
				s.consumeExpectedPunct(")")
			}
			s.skipForeignKeyActions()
		case s.peek().IsKeyword("GENERATED"):
			s.take()
			// ALWAYS is not in the keyword table, so it arrives as an identifier.
			if t := s.peek(); t.Kind == lexer.KindIdent && strings.EqualFold(t.Text, "ALWAYS") {
				s.take()
			} else {
				s.errf("expected ALWAYS, found %s", s.describe(t))
			}
			s.consumeExpectedKeyword("AS")
			s.consumeExpectedPunct("(")
			col.Generated = s.parseExpr(1)
			s.consumeExpectedPunct(")")
			s.takeIfKeyword("STORED")
			s.takeIfKeyword("VIRTUAL")
		case s.peek().IsKeyword("AS"):
			s.take()
			s.consumeExpectedPunct("(")
			col.Generated = s.parseExpr(1)
			s.consumeExpectedPunct(")")
			s.takeIfKeyword("STORED")
			s.takeIfKeyword("VIRTUAL")
		case s.peek().IsKeyword("CHECK"):
			s.take()
			s.consumeExpectedPunct("(")
			s.parseExpr(1)
			s.consumeExpectedPunct(")")
		default:
			return col
		}
	}
}

// parseDefaultLiteral parses an unparenthesized DEFAULT value: one operand
// at unary-prefix precedence, so a signed numeric or string literal, NULL,
// or a CURRENT_* keyword, but also any other primary such as a column name
// or function call. Binary operators after it are not consumed. The
// parenthesized form is handled by the caller.
func (s *state) parseDefaultLiteral() ast.Expr {
	return s.parseExpr(ast.PrecedenceOf(ast.OpUnaryNeg).Prefix)
}

func (s *state) isTypeNameStart() bool {
	t := s.peek()
	if t.Kind != lexer.KindIdent && t.Kind != lexer.KindKeyword {
		return false
	}
	switch t.Text {
	case "NOT", "NULL", "PRIMARY", "UNIQUE", "DEFAULT", "COLLATE", "REFERENCES",
		"GENERATED", "AS", "CHECK", ",", ")":
		return false
	}
	return true
}

func (s *state) parseCreateVirtualTable(start int, doc string) ast.Stmt {
	s.consumeExpectedKeyword("VIRTUAL")
	s.consumeExpectedKeyword("TABLE")
	ifNotExists := s.parseIfNotExists()
	name := s.parseQualifiedName()
	ct := ast.NewCreateTable(s.nextID(), s.spanFrom(start))
	ct.Name = name.name
	ct.IfNotExists = ifNotExists
	ct.Virtual = true
	ct.Doc = doc
	s.consumeExpectedKeyword("USING")
	modTok, _ := s.consumeExpectedIdent()
	ct.ModuleName = modTok.Text
	if _, ok := s.takeIfPunct("("); ok {
		ct.ModuleArgs = s.collectRawArgList()
		s.consumeExpectedPunct(")")
	}
	if strings.EqualFold(ct.ModuleName, "fts5") {
		for _, arg := range ct.ModuleArgs {
			colName := strings.TrimSpace(strings.SplitN(arg, " ", 2)[0])
			colName = strings.Trim(colName, `"'`+"`")
			if colName == "" || strings.Contains(strings.ToUpper(arg), "=") {
				continue
			}
			ct.Columns = append(ct.Columns, ast.ColumnDef{Name: colName, TypeName: "TEXT"})
		}
	}
	return ct
}

// collectRawArgList reads a parenthesized argument list as raw comma-joined
// text, balancing any nested parens inside each argument; used for virtual
// table module arguments whose grammar is module-defined, not SQL.
func (s *state) collectRawArgList() []string {
	var args []string
	var b strings.Builder
	depth := 0
	for !s.atEOF() {
		if depth == 0 && s.peek().IsPunct(")") {
			break
		}
		t := s.take()
		if t.IsPunct("(") {
			depth++
		} else if t.IsPunct(")") {
			depth--
		}
		if depth == 0 && t.IsPunct(",") {
			args = append(args, strings.TrimSpace(b.String()))
			b.Reset()
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	if b.Len() > 0 {
		args = append(args, strings.TrimSpace(b.String()))
	}
	return args
}

func (s *state) parseAlterTable(start int) ast.Stmt {
	s.take() // ALTER
	s.consumeExpectedKeyword("TABLE")
	name := s.parseQualifiedName()
	at := ast.NewAlterTable(s.nextID(), s.spanFrom(start))
	at.Table = name.name
	switch {
	case s.peek().IsKeyword("RENAME"):
		s.take()
		if _, ok := s.takeIfKeyword("TO"); ok {
			nt, _ := s.consumeExpectedIdent()
			at.Kind = ast.AlterRenameTable
			at.NewName = unquoteIdent(nt)
			return at
		}
		s.takeIfKeyword("COLUMN")
		old, _ := s.consumeExpectedIdent()
		s.consumeExpectedKeyword("TO")
		nw, _ := s.consumeExpectedIdent()
		at.Kind = ast.AlterRenameColumn
		at.OldColumn = unquoteIdent(old)
		at.NewName = unquoteIdent(nw)
	case s.peek().IsKeyword("ADD"):
		s.take()
		s.takeIfKeyword("COLUMN")
		col := s.parseColumnDef()
		at.Kind = ast.AlterAddColumn
		at.NewColumn = &col
	case s.peek().IsKeyword("DROP"):
		s.take()
		s.takeIfKeyword("COLUMN")
		old, _ := s.consumeExpectedIdent()
		at.Kind = ast.AlterDropColumn
		at.OldColumn = unquoteIdent(old)
	default:
		s.errf("expected RENAME, ADD, or DROP after ALTER TABLE")
	}
	return at
}

func (s *state) parseCreateIndex(start int) ast.Stmt {
	unique := false
	if _, ok := s.takeIfKeyword("UNIQUE"); ok {
		unique = true
	}
	s.consumeExpectedKeyword("INDEX")
	ifNotExists := s.parseIfNotExists()
	name := s.parseQualifiedName()
	ci := ast.NewCreateIndex(s.nextID(), s.spanFrom(start))
	ci.Name = name.name
	ci.Unique = unique
	ci.IfNotExists = ifNotExists
	s.consumeExpectedKeyword("ON")
	table := s.parseQualifiedName()
	ci.Table = table.name
	s.consumeExpectedPunct("(")
	ci.Columns = s.parseIndexedColumnList()
	s.consumeExpectedPunct(")")
	if _, ok := s.takeIfKeyword("WHERE"); ok {
		ci.Where = s.parseExpr(1)
	}
	return ci
}

func (s *state) parseDrop(start int) ast.Stmt {
	s.take() // DROP
	var kind ast.DropKind
	switch {
	case s.takeIfKeywordBool("TABLE"):
		kind = ast.DropTable
	case s.takeIfKeywordBool("INDEX"):
		kind = ast.DropIndex
	case s.takeIfKeywordBool("VIEW"):
		kind = ast.DropView
	case s.takeIfKeywordBool("TRIGGER"):
		kind = ast.DropTrigger
	default:
		s.errf("expected TABLE, INDEX, VIEW, or TRIGGER after DROP")
		s.synchronize()
		return nil
	}
	ifExists := s.parseIfExists()
	name := s.parseQualifiedName()
	return ast.NewDrop(s.nextID(), s.spanFrom(start), kind, name.name, ifExists)
}

func (s *state) takeIfKeywordBool(word string) bool {
	_, ok := s.takeIfKeyword(word)
	return ok
}

func (s *state) parseCreateView(start int, doc string) ast.Stmt {
	s.consumeExpectedKeyword("VIEW")
	ifNotExists := s.parseIfNotExists()
	name := s.parseQualifiedName()
	cv := ast.NewCreateView(s.nextID(), s.spanFrom(start))
	cv.Name = name.name
	cv.IfNotExists = ifNotExists
	cv.Doc = doc
	if _, ok := s.takeIfPunct("("); ok {
		cv.Columns = s.parseIndexedColumnList()
		s.consumeExpectedPunct(")")
	}
	s.consumeExpectedKeyword("AS")
	cv.Select = s.parseSelect()
	return cv
}

// parseCreateTrigger consumes a full CREATE TRIGGER statement but retains
// only its name and target table; the BEGIN...END body is stored verbatim
// since trigger bodies fall outside signature inference.
func (s *state) parseCreateTrigger(start int) ast.Stmt {
	s.consumeExpectedKeyword("TRIGGER")
	s.parseIfNotExists()
	name := s.parseQualifiedName()
	bodyStart := s.pos
	for !s.atEOF() && !s.peek().IsKeyword("BEGIN") {
		s.take()
	}
	table := ""
	if idx := indexOfKeyword(s.toks[bodyStart:s.pos], "ON"); idx >= 0 {
		pos := bodyStart + idx + 1
		if pos < len(s.toks) {
			table = s.toks[pos].Text
		}
	}
	body := ""
	if bt, ok := s.takeIfKeyword("BEGIN"); ok {
		depth := 1
		for !s.atEOF() && depth > 0 {
			if s.peek().IsKeyword("BEGIN") {
				depth++
			} else if s.peek().IsKeyword("END") {
				depth--
				if depth == 0 {
					s.take()
					break
				}
			}
			s.take()
		}
		body = s.srcBetween(int(bt.Span.Start), int(s.toks[s.pos-1].Span.End))
	}
	return ast.NewCreateTrigger(s.nextID(), s.spanFrom(start), name.name, table, body)
}

func indexOfKeyword(toks []lexer.Token, word string) int {
	for i, t := range toks {
		if t.IsKeyword(word) {
			return i
		}
	}
	return -1
}

func (s *state) parsePragma(start int) ast.Stmt {
	s.take() // PRAGMA
	nameTok, _ := s.consumeExpectedIdent()
	p := ast.NewPragma(s.nextID(), s.spanFrom(start), unquoteIdent(nameTok), "")
	if _, ok := s.takeIfPunct("="); ok {
		vt := s.take()
		p.Value = vt.Text
	} else if _, ok := s.takeIfPunct("("); ok {
		vt := s.take()
		p.Value = vt.Text
		s.consumeExpectedPunct(")")
	}
	return p
}

func (s *state) parseReindex(start int) ast.Stmt {
	s.take() // REINDEX
	name := ""
	if s.peek().Kind == lexer.KindIdent {
		name = unquoteIdent(s.take())
	}
	return ast.NewReindex(s.nextID(), s.spanFrom(start), name)
}
