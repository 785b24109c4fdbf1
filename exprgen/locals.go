package exprgen

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
)

type scope struct {
	start  int // first slot owned by the scope
	locals []compiler.Local
	names  map[string]int // index into locals
}

// Scopes allocates local variable slots in nested lexical scopes. Slots
// are handed out in declaration order and reclaimed when their scope
// exits. It implements compiler.Locals.
type Scopes struct {
	scopes []*scope
	next   int
	max    int
}

// NewScopes returns an allocator with no open scope.
func NewScopes() *Scopes {
	return &Scopes{}
}

func (s *Scopes) EnterScope() {
	s.scopes = append(s.scopes, &scope{start: s.next, names: map[string]int{}})
}

func (s *Scopes) ExitScope() {
	n := len(s.scopes)
	if n == 0 {
		panic(errors.Internalf("exit of a scope that was never entered"))
	}
	s.next = s.scopes[n-1].start
	s.scopes = s.scopes[:n-1]
}

func (s *Scopes) innermost() *scope {
	if len(s.scopes) == 0 {
		s.EnterScope()
	}
	return s.scopes[len(s.scopes)-1]
}

// allocate reserves the slots for a value of descriptor desc. max_locals
// is a u2, so every slot must lie below 65535.
func (s *Scopes) allocate(desc string) (int, error) {
	slot := s.next
	size := bytecode.SlotSize(desc)
	if size == 0 {
		size = 1
	}
	if slot+size > math.MaxUint16 {
		return 0, errors.ErrTooManyLocals
	}
	s.next += size
	if s.next > s.max {
		s.max = s.next
	}
	return slot, nil
}

func (s *Scopes) Declare(name, desc string) (int, error) {
	sc := s.innermost()
	if _, ok := sc.names[name]; ok {
		return 0, fmt.Errorf("%s is already declared", name)
	}
	slot, err := s.allocate(desc)
	if err != nil {
		return 0, err
	}
	sc.names[name] = len(sc.locals)
	sc.locals = append(sc.locals, compiler.Local{Name: name, Slot: slot, Descriptor: desc})
	return slot, nil
}

func (s *Scopes) Temp(desc string) (int, error) {
	s.innermost()
	return s.allocate(desc)
}

func (s *Scopes) Lookup(name string) (compiler.Local, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		sc := s.scopes[i]
		if j, ok := sc.names[name]; ok {
			return sc.locals[j], true
		}
	}
	return compiler.Local{}, false
}

func (s *Scopes) MaxLocals() int {
	return s.max
}

// Names returns the visible local names, innermost first.
func (s *Scopes) Names() []string {
	var names []string
	for i := len(s.scopes) - 1; i >= 0; i-- {
		for _, local := range s.scopes[i].locals {
			names = append(names, local.Name)
		}
	}
	return names
}

// errorAt creates a CompileError located at node. The compiler adds the
// filename and source line.
func errorAt(code errors.ErrorCode, node ast.Node, format string, args ...any) *errors.CompileError {
	var loc errors.SourceLocation
	if pos := node.Pos(); pos.IsValid() {
		loc.Line = pos.LineNumber()
		loc.Column = pos.ColumnNumber()
	}
	return errors.Newf(code, loc, format, args...)
}

func undefinedVariable(ctx *compiler.Context, name *ast.Ident) *errors.CompileError {
	err := errorAt(errors.E2001, name, "undefined variable %s", name.Name)
	if named, ok := ctx.Locals.(interface{ Names() []string }); ok {
		if suggestions := errors.SuggestSimilar(name.Name, named.Names()); len(suggestions) > 0 {
			err.WithSuggestions(suggestions)
		}
	}
	return err
}
