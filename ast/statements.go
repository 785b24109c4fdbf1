package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/jlower/internal/token"
)

// Block is a sequence of statements with its own local scope.
type Block struct {
	Lbrace token.Position
	Stmts  []Stmt
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position {
	if n := len(s.Stmts); n > 0 {
		return s.Stmts[n-1].End()
	}
	return s.Lbrace.Advance(2)
}

func (s *Block) String() string {
	if len(s.Stmts) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(s.Stmts))
	for _, stmt := range s.Stmts {
		parts = append(parts, stmt.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.X.End() }

func (s *ExprStmt) String() string { return s.X.String() }

// Var declares a local variable. Type is an optional surface type
// annotation such as "int" or "List"; without one the type is inferred
// from Value. Value may be nil, in which case the local starts at its
// zero value.
type Var struct {
	Let   token.Position
	Name  *Ident
	Type  string
	Value Expr
}

func (s *Var) stmtNode() {}

func (s *Var) Pos() token.Position { return s.Let }
func (s *Var) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Name.End()
}

func (s *Var) String() string {
	var out bytes.Buffer
	out.WriteString("let ")
	out.WriteString(s.Name.Name)
	if s.Type != "" {
		out.WriteString(": " + s.Type)
	}
	if s.Value != nil {
		out.WriteString(" = ")
		out.WriteString(s.Value.String())
	}
	return out.String()
}

// If is a conditional statement. Alternative is nil when there is no else.
type If struct {
	If          token.Position
	Cond        Expr
	Consequence Stmt
	Alternative Stmt
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.If }
func (s *If) End() token.Position {
	if s.Alternative != nil {
		return s.Alternative.End()
	}
	return s.Consequence.End()
}

func (s *If) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(s.Cond.String())
	out.WriteString(") ")
	out.WriteString(s.Consequence.String())
	if s.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(s.Alternative.String())
	}
	return out.String()
}

// For is a C-style loop. Init, Cond and Post are all optional; a nil Cond
// loops forever.
type For struct {
	For  token.Position
	Init Stmt
	Cond Expr
	Post Stmt
	Body Stmt
}

func (s *For) stmtNode() {}

func (s *For) Pos() token.Position { return s.For }
func (s *For) End() token.Position { return s.Body.End() }

func (s *For) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if s.Init != nil {
		out.WriteString(s.Init.String())
	}
	out.WriteString("; ")
	if s.Cond != nil {
		out.WriteString(s.Cond.String())
	}
	out.WriteString("; ")
	if s.Post != nil {
		out.WriteString(s.Post.String())
	}
	out.WriteString(") ")
	out.WriteString(s.Body.String())
	return out.String()
}

// While loops while Cond holds, testing before each iteration.
type While struct {
	While token.Position
	Cond  Expr
	Body  Stmt
}

func (s *While) stmtNode() {}

func (s *While) Pos() token.Position { return s.While }
func (s *While) End() token.Position { return s.Body.End() }

func (s *While) String() string {
	return "while (" + s.Cond.String() + ") " + s.Body.String()
}

// DoWhile runs Body once, then repeats it while Cond holds.
type DoWhile struct {
	Do   token.Position
	Body Stmt
	Cond Expr
}

func (s *DoWhile) stmtNode() {}

func (s *DoWhile) Pos() token.Position { return s.Do }
func (s *DoWhile) End() token.Position { return s.Cond.End() }

func (s *DoWhile) String() string {
	return "do " + s.Body.String() + " while (" + s.Cond.String() + ")"
}

// ForIn iterates the keys of Iter: string indices of arrays, lists and
// strings, and stringified keys of maps.
type ForIn struct {
	For  token.Position
	Name *Ident
	Iter Expr
	Body Stmt
}

func (s *ForIn) stmtNode() {}

func (s *ForIn) Pos() token.Position { return s.For }
func (s *ForIn) End() token.Position { return s.Body.End() }

func (s *ForIn) String() string {
	return "for (let " + s.Name.Name + " in " + s.Iter.String() + ") " + s.Body.String()
}

// ForOf iterates the values of Iter. Exactly one of Name and Pattern is set.
type ForOf struct {
	For     token.Position
	Name    *Ident
	Pattern Pattern
	Iter    Expr
	Body    Stmt
}

func (s *ForOf) stmtNode() {}

func (s *ForOf) Pos() token.Position { return s.For }
func (s *ForOf) End() token.Position { return s.Body.End() }

func (s *ForOf) String() string {
	var target string
	if s.Pattern != nil {
		target = s.Pattern.String()
	} else {
		target = s.Name.Name
	}
	return "for (let " + target + " of " + s.Iter.String() + ") " + s.Body.String()
}

// Labeled attaches a label to a statement.
type Labeled struct {
	Label *Ident
	Colon token.Position
	Stmt  Stmt
}

func (s *Labeled) stmtNode() {}

func (s *Labeled) Pos() token.Position { return s.Label.Pos() }
func (s *Labeled) End() token.Position { return s.Stmt.End() }

func (s *Labeled) String() string { return s.Label.Name + ": " + s.Stmt.String() }

// Break exits the innermost loop or switch, or the statement carrying Label.
type Break struct {
	Break token.Position
	Label *Ident
}

func (s *Break) stmtNode() {}

func (s *Break) Pos() token.Position { return s.Break }
func (s *Break) End() token.Position {
	if s.Label != nil {
		return s.Label.End()
	}
	return s.Break.Advance(5)
}

func (s *Break) String() string {
	if s.Label != nil {
		return "break " + s.Label.Name
	}
	return "break"
}

// Continue starts the next iteration of the innermost loop, or of the loop
// carrying Label.
type Continue struct {
	Continue token.Position
	Label    *Ident
}

func (s *Continue) stmtNode() {}

func (s *Continue) Pos() token.Position { return s.Continue }
func (s *Continue) End() token.Position {
	if s.Label != nil {
		return s.Label.End()
	}
	return s.Continue.Advance(8)
}

func (s *Continue) String() string {
	if s.Label != nil {
		return "continue " + s.Label.Name
	}
	return "continue"
}

// Return leaves the method. Value is nil for a bare return.
type Return struct {
	Return token.Position
	Value  Expr
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.Return }
func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Return.Advance(6)
}

func (s *Return) String() string {
	if s.Value != nil {
		return "return " + s.Value.String()
	}
	return "return"
}

// Throw raises the value of an expression.
type Throw struct {
	Throw token.Position
	Value Expr
}

func (s *Throw) stmtNode() {}

func (s *Throw) Pos() token.Position { return s.Throw }
func (s *Throw) End() token.Position { return s.Value.End() }

func (s *Throw) String() string { return "throw " + s.Value.String() }

// Try is a try statement with any number of catch clauses and an optional
// finally block. At least one of Catches and Finally must be present.
type Try struct {
	Try     token.Position
	Body    *Block
	Catches []*Catch
	Finally *Block
}

func (s *Try) stmtNode() {}

func (s *Try) Pos() token.Position { return s.Try }
func (s *Try) End() token.Position {
	if s.Finally != nil {
		return s.Finally.End()
	}
	if n := len(s.Catches); n > 0 {
		return s.Catches[n-1].End()
	}
	return s.Body.End()
}

func (s *Try) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(s.Body.String())
	for _, c := range s.Catches {
		out.WriteString(" ")
		out.WriteString(c.String())
	}
	if s.Finally != nil {
		out.WriteString(" finally ")
		out.WriteString(s.Finally.String())
	}
	return out.String()
}

// Catch is one catch clause. Param and Pattern are both optional and
// mutually exclusive; Type narrows the caught exception class.
type Catch struct {
	Catch   token.Position
	Param   *Ident
	Pattern Pattern
	Type    string
	Body    *Block
}

func (s *Catch) Pos() token.Position { return s.Catch }
func (s *Catch) End() token.Position { return s.Body.End() }

func (s *Catch) String() string {
	var out bytes.Buffer
	out.WriteString("catch ")
	switch {
	case s.Pattern != nil:
		out.WriteString("(" + s.Pattern.String())
	case s.Param != nil:
		out.WriteString("(" + s.Param.Name)
	}
	if s.Type != "" {
		if s.Param == nil && s.Pattern == nil {
			out.WriteString("(_")
		}
		out.WriteString(": " + s.Type)
	}
	if s.Param != nil || s.Pattern != nil || s.Type != "" {
		out.WriteString(") ")
	}
	out.WriteString(s.Body.String())
	return out.String()
}

// Switch dispatches on an int discriminant.
type Switch struct {
	Switch token.Position
	Value  Expr
	Cases  []*Case
}

func (s *Switch) stmtNode() {}

func (s *Switch) Pos() token.Position { return s.Switch }
func (s *Switch) End() token.Position {
	if n := len(s.Cases); n > 0 {
		return s.Cases[n-1].End()
	}
	return s.Value.End()
}

func (s *Switch) String() string {
	var out bytes.Buffer
	out.WriteString("switch (")
	out.WriteString(s.Value.String())
	out.WriteString(") {")
	for _, c := range s.Cases {
		out.WriteString(" ")
		out.WriteString(c.String())
	}
	out.WriteString(" }")
	return out.String()
}

// Case is one arm of a switch. Default cases have a nil Value. Control
// falls through from one case body into the next unless it breaks.
type Case struct {
	Case    token.Position
	Value   Expr
	Default bool
	Body    []Stmt
}

func (s *Case) Pos() token.Position { return s.Case }
func (s *Case) End() token.Position {
	if n := len(s.Body); n > 0 {
		return s.Body[n-1].End()
	}
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Case.Advance(7)
}

func (s *Case) String() string {
	var out bytes.Buffer
	if s.Default {
		out.WriteString("default:")
	} else {
		out.WriteString("case ")
		out.WriteString(s.Value.String())
		out.WriteString(":")
	}
	for _, stmt := range s.Body {
		out.WriteString(" ")
		out.WriteString(stmt.String())
		out.WriteString(";")
	}
	return out.String()
}

// Using declares scoped resources. The resources are disposed, in reverse
// declaration order, when control leaves the enclosing block by any path.
type Using struct {
	Using token.Position
	Decls []*UsingDecl
}

func (s *Using) stmtNode() {}

func (s *Using) Pos() token.Position { return s.Using }
func (s *Using) End() token.Position {
	if n := len(s.Decls); n > 0 {
		return s.Decls[n-1].Value.End()
	}
	return s.Using.Advance(5)
}

func (s *Using) String() string {
	parts := make([]string, 0, len(s.Decls))
	for _, d := range s.Decls {
		parts = append(parts, d.String())
	}
	return "using " + strings.Join(parts, ", ")
}

// UsingDecl is one resource of a using statement.
type UsingDecl struct {
	Name  *Ident
	Type  string
	Value Expr
}

func (d *UsingDecl) Pos() token.Position { return d.Name.Pos() }
func (d *UsingDecl) End() token.Position { return d.Value.End() }

func (d *UsingDecl) String() string {
	s := d.Name.Name
	if d.Type != "" {
		s += ": " + d.Type
	}
	return s + " = " + d.Value.String()
}

// Empty is a statement that does nothing.
type Empty struct {
	Semicolon token.Position
}

func (s *Empty) stmtNode() {}

func (s *Empty) Pos() token.Position { return s.Semicolon }
func (s *Empty) End() token.Position { return s.Semicolon.Advance(1) }

func (s *Empty) String() string { return ";" }
