package ast

import "github.com/wickwirew/sqlsig/internal/srcmap"

// Constructors for statement nodes, mirroring the Expr constructors in
// expr.go: the embedded base is unexported, so callers outside the package
// build nodes through these rather than struct literals.

func NewCreateTable(id NodeID, span srcmap.Span) *CreateTable {
	return &CreateTable{base: base{NodeID: id, Sp: span}}
}

func NewAlterTable(id NodeID, span srcmap.Span) *AlterTable {
	return &AlterTable{base: base{NodeID: id, Sp: span}}
}

func NewCreateIndex(id NodeID, span srcmap.Span) *CreateIndex {
	return &CreateIndex{base: base{NodeID: id, Sp: span}}
}

func NewDrop(id NodeID, span srcmap.Span, kind DropKind, name string, ifExists bool) *Drop {
	return &Drop{base: base{NodeID: id, Sp: span}, Kind: kind, Name: name, IfExists: ifExists}
}

func NewCreateView(id NodeID, span srcmap.Span) *CreateView {
	return &CreateView{base: base{NodeID: id, Sp: span}}
}

func NewCreateTrigger(id NodeID, span srcmap.Span, name, table, body string) *CreateTrigger {
	return &CreateTrigger{base: base{NodeID: id, Sp: span}, Name: name, Table: table, Body: body}
}

func NewSelect(id NodeID, span srcmap.Span) *Select {
	return &Select{base: base{NodeID: id, Sp: span}}
}

func NewInsert(id NodeID, span srcmap.Span) *Insert {
	return &Insert{base: base{NodeID: id, Sp: span}}
}

func NewUpdate(id NodeID, span srcmap.Span) *Update {
	return &Update{base: base{NodeID: id, Sp: span}}
}

func NewDelete(id NodeID, span srcmap.Span) *Delete {
	return &Delete{base: base{NodeID: id, Sp: span}}
}

func NewPragma(id NodeID, span srcmap.Span, name, value string) *Pragma {
	return &Pragma{base: base{NodeID: id, Sp: span}, Name: name, Value: value}
}

func NewReindex(id NodeID, span srcmap.Span, name string) *Reindex {
	return &Reindex{base: base{NodeID: id, Sp: span}, Name: name}
}
