package ast

import (
	"strings"

	"github.com/deepnoodle-ai/jlower/internal/token"
)

// ArrayPattern binds elements by position, as in "[key, value]". A nil
// element skips that position.
type ArrayPattern struct {
	Lbrack   token.Position
	Elements []*Ident
	Rbrack   token.Position
}

func (p *ArrayPattern) patternNode() {}

func (p *ArrayPattern) Pos() token.Position { return p.Lbrack }
func (p *ArrayPattern) End() token.Position { return p.Rbrack.Advance(1) }

func (p *ArrayPattern) String() string {
	names := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		if e != nil {
			names[i] = e.Name
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Names returns the bound identifiers, skipping holes.
func (p *ArrayPattern) Names() []*Ident {
	var out []*Ident
	for _, e := range p.Elements {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// ObjectBinding binds the value stored under Key to the local Name.
type ObjectBinding struct {
	Key  string
	Name *Ident
}

// ObjectPattern binds map entries by key, as in "{ a, b: c }".
type ObjectPattern struct {
	Lbrace   token.Position
	Bindings []ObjectBinding
	Rbrace   token.Position
}

func (p *ObjectPattern) patternNode() {}

func (p *ObjectPattern) Pos() token.Position { return p.Lbrace }
func (p *ObjectPattern) End() token.Position { return p.Rbrace.Advance(1) }

func (p *ObjectPattern) String() string {
	parts := make([]string, 0, len(p.Bindings))
	for _, b := range p.Bindings {
		if b.Name == nil || b.Name.Name == b.Key {
			parts = append(parts, b.Key)
		} else {
			parts = append(parts, b.Key+": "+b.Name.Name)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Names returns the bound identifiers.
func (p *ObjectPattern) Names() []*Ident {
	out := make([]*Ident, 0, len(p.Bindings))
	for _, b := range p.Bindings {
		out = append(out, b.Name)
	}
	return out
}
