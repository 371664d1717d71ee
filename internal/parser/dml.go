package parser

import "github.com/wickwirew/sqlsig/internal/ast"

func (s *state) parseConflictAction() ast.ConflictAction {
	if _, ok := s.takeIfKeyword("OR"); ok {
		switch {
		case s.takeIfKeywordBool("ROLLBACK"):
			return ast.ConflictRollback
		case s.takeIfKeywordBool("ABORT"):
			return ast.ConflictAbort
		case s.takeIfKeywordBool("FAIL"):
			return ast.ConflictFail
		case s.takeIfKeywordBool("IGNORE"):
			return ast.ConflictIgnore
		case s.takeIfKeywordBool("REPLACE"):
			return ast.ConflictReplace
		}
	}
	return ast.ConflictNone
}

// parseInsert handles both `INSERT [OR action] INTO ...` and the `REPLACE
// INTO ...` shorthand, which SQLite treats as `INSERT OR REPLACE INTO ...`.
func (s *state) parseInsert(start int) ast.Stmt {
	conflict := ast.ConflictNone
	if _, ok := s.takeIfKeyword("REPLACE"); ok {
		conflict = ast.ConflictReplace
	} else {
		s.consumeExpectedKeyword("INSERT")
		conflict = s.parseConflictAction()
	}
	s.consumeExpectedKeyword("INTO")
	name := s.parseQualifiedName()
	ins := ast.NewInsert(s.nextID(), s.spanFrom(start))
	ins.Table = name.name
	ins.Conflict = conflict
	if _, ok := s.takeIfPunct("("); ok {
		ins.Columns = s.parseIndexedColumnList()
		s.consumeExpectedPunct(")")
	}
	switch {
	case s.peek().IsKeyword("VALUES"):
		s.take()
		for {
			s.consumeExpectedPunct("(")
			var row []ast.Expr
			if !s.peek().IsPunct(")") {
				row = append(row, s.parseExpr(1))
				for {
					if _, ok := s.takeIfPunct(","); ok {
						row = append(row, s.parseExpr(1))
						continue
					}
					break
				}
			}
			s.consumeExpectedPunct(")")
			ins.Rows = append(ins.Rows, row)
			if _, ok := s.takeIfPunct(","); ok {
				continue
			}
			break
		}
	case s.peek().IsKeyword("SELECT") || s.peek().IsKeyword("WITH"):
		ins.Select = s.parseSelect()
	case s.peek().IsKeyword("DEFAULT"):
		s.take()
		s.consumeExpectedKeyword("VALUES")
	default:
		s.errf("expected VALUES, SELECT, or DEFAULT VALUES in INSERT")
	}
	if _, ok := s.takeIfKeyword("ON"); ok {
		s.consumeExpectedKeyword("CONFLICT")
		if _, ok := s.takeIfPunct("("); ok {
			ins.UpsertCols = s.parseIndexedColumnList()
			s.consumeExpectedPunct(")")
			if _, ok := s.takeIfKeyword("WHERE"); ok {
				s.parseExpr(1)
			}
		}
		s.consumeExpectedKeyword("DO")
		if _, ok := s.takeIfKeyword("NOTHING"); ok {
			_ = ok
		} else {
			s.consumeExpectedKeyword("UPDATE")
			s.consumeExpectedKeyword("SET")
			ins.UpsertDo = s.parseSetClauses()
			if _, ok := s.takeIfKeyword("WHERE"); ok {
				s.parseExpr(1)
			}
		}
	}
	if _, ok := s.takeIfKeyword("RETURNING"); ok {
		ins.Returning = s.parseReturningColumns()
	}
	return ins
}

func (s *state) parseSetClauses() []ast.SetClause {
	var sets []ast.SetClause
	for {
		if _, ok := s.takeIfPunct("("); ok {
			// Multi-column assignment: (a, b) = (1, 2); expand positionally.
			cols := s.parseIndexedColumnList()
			s.consumeExpectedPunct(")")
			s.consumeExpectedPunct("=")
			s.consumeExpectedPunct("(")
			for i, col := range cols {
				if i > 0 {
					s.consumeExpectedPunct(",")
				}
				sets = append(sets, ast.SetClause{Column: col, Value: s.parseExpr(1)})
			}
			s.consumeExpectedPunct(")")
		} else {
			colTok, _ := s.consumeExpectedIdent()
			s.consumeExpectedPunct("=")
			sets = append(sets, ast.SetClause{Column: unquoteIdent(colTok), Value: s.parseExpr(1)})
		}
		if _, ok := s.takeIfPunct(","); ok {
			continue
		}
		break
	}
	return sets
}

func (s *state) parseUpdate(start int) ast.Stmt {
	s.take() // UPDATE
	conflict := s.parseConflictAction()
	name := s.parseQualifiedName()
	upd := ast.NewUpdate(s.nextID(), s.spanFrom(start))
	upd.Table = name.name
	upd.Conflict = conflict
	s.consumeExpectedKeyword("SET")
	upd.Set = s.parseSetClauses()
	if _, ok := s.takeIfKeyword("FROM"); ok {
		upd.From = s.parseFrom()
	}
	if _, ok := s.takeIfKeyword("WHERE"); ok {
		upd.Where = s.parseExpr(1)
	}
	if _, ok := s.takeIfKeyword("RETURNING"); ok {
		upd.Returning = s.parseReturningColumns()
	}
	return upd
}

func (s *state) parseDelete(start int) ast.Stmt {
	s.take() // DELETE
	s.consumeExpectedKeyword("FROM")
	name := s.parseQualifiedName()
	del := ast.NewDelete(s.nextID(), s.spanFrom(start))
	del.Table = name.name
	if _, ok := s.takeIfKeyword("WHERE"); ok {
		del.Where = s.parseExpr(1)
	}
	if _, ok := s.takeIfKeyword("RETURNING"); ok {
		del.Returning = s.parseReturningColumns()
	}
	return del
}
