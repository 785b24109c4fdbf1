package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
)

// Context gives the collaborators access to the method being compiled.
// It is only valid for the duration of a single collaborator call.
type Context struct {
	Code   *bytecode.CodeBuffer
	Pool   *bytecode.ConstantPool
	Locals Locals
	Class  string
}

// ExprGenerator emits the instructions for an expression.
type ExprGenerator interface {
	// Generate emits code that leaves the value of expr on the operand
	// stack and returns the descriptor of that value.
	Generate(ctx *Context, expr ast.Expr) (string, error)
}

// EffectGenerator is an optional extension of ExprGenerator for
// expressions evaluated only for their side effects. GenerateEffect leaves
// nothing on the operand stack.
type EffectGenerator interface {
	GenerateEffect(ctx *Context, expr ast.Expr) error
}

// TypeResolver infers descriptors without emitting any code.
type TypeResolver interface {
	// TypeOf returns the descriptor expr would produce.
	TypeOf(ctx *Context, expr ast.Expr) (string, error)

	// ResolveAnnotation maps a surface type annotation such as "int" or
	// "List" to a descriptor. The empty annotation resolves to void.
	ResolveAnnotation(annotation string) (string, error)
}

// Local is a named local variable slot.
type Local struct {
	Name       string
	Slot       int
	Descriptor string
}

// Locals allocates local variable slots within nested scopes. Slots
// released when a scope exits may be reused by later declarations.
type Locals interface {
	EnterScope()
	ExitScope()

	// Declare allocates a named local in the innermost scope. It fails if
	// the name is already declared in that scope, or with
	// errors.ErrTooManyLocals if the slots are exhausted.
	Declare(name, desc string) (int, error)

	// Lookup finds the innermost local with the given name.
	Lookup(name string) (Local, bool)

	// Temp allocates an unnamed local in the innermost scope. It fails with
	// errors.ErrTooManyLocals if the slots are exhausted.
	Temp(desc string) (int, error)

	// MaxLocals returns the high-water mark of allocated slots.
	MaxLocals() int
}

// Destructurer emits the bytecode that binds the parts of a value to the
// names in a pattern.
type Destructurer interface {
	// Destructure reads the value of descriptor desc held in slot and
	// declares and stores every name bound by pattern.
	Destructure(ctx *Context, slot int, desc string, pattern ast.Pattern) error
}
