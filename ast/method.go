package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/jlower/internal/token"
)

// Param is a method parameter with a required type annotation.
type Param struct {
	Name *Ident
	Type string
}

func (p *Param) Pos() token.Position { return p.Name.Pos() }
func (p *Param) End() token.Position { return p.Name.End() }
func (p *Param) String() string      { return p.Name.Name + ": " + p.Type }

// Method is a method declaration. Returns is the return type annotation,
// empty for void methods.
type Method struct {
	Def     token.Position
	Name    *Ident
	Static  bool
	Params  []*Param
	Returns string
	Body    *Block
}

func (m *Method) Pos() token.Position { return m.Def }
func (m *Method) End() token.Position { return m.Body.End() }

func (m *Method) String() string {
	var out bytes.Buffer
	if m.Static {
		out.WriteString("static ")
	}
	out.WriteString(m.Name.Name)
	params := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, p.String())
	}
	out.WriteString("(" + strings.Join(params, ", ") + ")")
	if m.Returns != "" {
		out.WriteString(": " + m.Returns)
	}
	out.WriteString(" ")
	out.WriteString(m.Body.String())
	return out.String()
}

// Class is the root of a method file: a named class and its methods.
type Class struct {
	ClassPos token.Position
	Name     string
	Methods  []*Method
}

func (c *Class) Pos() token.Position { return c.ClassPos }
func (c *Class) End() token.Position {
	if n := len(c.Methods); n > 0 {
		return c.Methods[n-1].End()
	}
	return c.ClassPos
}

func (c *Class) String() string {
	parts := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		parts = append(parts, m.String())
	}
	return "class " + c.Name + " { " + strings.Join(parts, " ") + " }"
}
