package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/jlower/internal/token"
)

// Ident is an expression node that refers to a variable by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Int is an integer literal.
type Int struct {
	ValuePos token.Position
	Literal  string
	Value    int64
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Bool is a boolean literal.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *Bool) String() string { return strconv.FormatBool(x.Value) }

// String is a string literal.
type String struct {
	ValuePos token.Position
	Value    string
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *String) String() string { return strconv.Quote(x.Value) }

// Null is the null reference literal.
type Null struct {
	NullPos token.Position
}

func (x *Null) exprNode() {}

func (x *Null) Pos() token.Position { return x.NullPos }
func (x *Null) End() token.Position { return x.NullPos.Advance(4) }

func (x *Null) String() string { return "null" }

// Prefix is an operator expression where the operator precedes the operand.
// Examples include "!done" and "-1".
type Prefix struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!", "-"
	X     Expr           // operand
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	return "(" + x.Op + x.X.String() + ")"
}

// Infix is an operator expression where the operator is between the operands.
// Examples include "i < n" and "a && b".
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "<", "&&", etc.
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.X.String())
	out.WriteString(" " + x.Op + " ")
	out.WriteString(x.Y.String())
	out.WriteString(")")
	return out.String()
}

// Assign stores a value into a local. Op is "=" or a compound operator
// such as "+=".
type Assign struct {
	Name  *Ident
	OpPos token.Position
	Op    string
	Value Expr
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position { return x.Name.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.Name.String() + " " + x.Op + " " + x.Value.String()
}

// Postfix is an increment or decrement of a local, such as "i++".
type Postfix struct {
	X     *Ident
	OpPos token.Position
	Op    string // "++" or "--"
}

func (x *Postfix) exprNode() {}

func (x *Postfix) Pos() token.Position { return x.X.Pos() }
func (x *Postfix) End() token.Position { return x.OpPos.Advance(2) }

func (x *Postfix) String() string { return x.X.String() + x.Op }

// Call invokes a function declared in the enclosing method file.
type Call struct {
	Fun    *Ident
	Lparen token.Position
	Args   []Expr
	Rparen token.Position
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	return x.Fun.String() + "(" + strings.Join(args, ", ") + ")"
}
