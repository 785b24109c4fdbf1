// Package exprgen implements the collaborators the compiler relies on for
// everything other than control flow: expression code generation, type
// inference, local variable allocation and destructuring.
//
// The expression language is small. Values are ints, booleans, strings
// and object references; expressions are literals, locals, arithmetic,
// comparisons, the short-circuit operators, assignment, increments and
// calls to static methods registered in a Functions table.
package exprgen

import (
	"math"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

const builderClass = "java/lang/StringBuilder"

var arithmetic = map[string]op.Code{
	"+": op.Iadd,
	"-": op.Isub,
	"*": op.Imul,
	"/": op.Idiv,
	"%": op.Irem,
}

// Generator emits bytecode for expressions. It implements
// compiler.ExprGenerator.
type Generator struct {
	functions Functions
	types     *Resolver
}

// NewGenerator returns a generator that compiles calls using functions.
func NewGenerator(functions Functions) *Generator {
	return &Generator{functions: functions, types: NewResolver(functions)}
}

// Configure installs the exprgen collaborators into cfg.
func Configure(cfg *compiler.Config, functions Functions) {
	gen := NewGenerator(functions)
	cfg.Expressions = gen
	cfg.Types = gen.types
	cfg.NewLocals = func() compiler.Locals { return NewScopes() }
	cfg.Destructurer = &Destructurer{}
}

func (g *Generator) Generate(ctx *compiler.Context, expr ast.Expr) (string, error) {
	buf := ctx.Code
	switch node := expr.(type) {
	case *ast.Ident:
		local, ok := ctx.Locals.Lookup(node.Name)
		if !ok {
			return "", undefinedVariable(ctx, node)
		}
		buf.EmitLoad(local.Descriptor, local.Slot)
		return local.Descriptor, nil
	case *ast.Int:
		if node.Value < math.MinInt32 || node.Value > math.MaxInt32 {
			return "", errorAt(errors.E1008, node, "integer literal %s does not fit in an int", node.Literal)
		}
		buf.EmitPushInt(int32(node.Value), ctx.Pool)
		return bytecode.Int, nil
	case *ast.Bool:
		if node.Value {
			buf.Emit(op.Iconst1)
		} else {
			buf.Emit(op.Iconst0)
		}
		return bytecode.Boolean, nil
	case *ast.String:
		buf.EmitLdc(ctx.Pool.String(node.Value))
		return bytecode.StringType, nil
	case *ast.Null:
		buf.Emit(op.AconstNull)
		return bytecode.ObjectType, nil
	case *ast.Prefix:
		return g.prefix(ctx, node)
	case *ast.Infix:
		return g.infix(ctx, node)
	case *ast.Assign:
		return g.assign(ctx, node)
	case *ast.Postfix:
		return g.postfix(ctx, node)
	case *ast.Call:
		return g.call(ctx, node)
	}
	return "", errorAt(errors.E1004, expr, "unsupported expression %s", expr)
}

// generateInt emits expr and checks that it produces an int-like value.
func (g *Generator) generateInt(ctx *compiler.Context, expr ast.Expr, operator string) error {
	desc, err := g.Generate(ctx, expr)
	if err != nil {
		return err
	}
	if !bytecode.IsIntLike(desc) {
		return errorAt(errors.E2020, expr, "operator %s is not defined for %s", operator, describe(desc))
	}
	return nil
}

func (g *Generator) prefix(ctx *compiler.Context, node *ast.Prefix) (string, error) {
	buf := ctx.Code
	switch node.Op {
	case "-":
		if err := g.generateInt(ctx, node.X, node.Op); err != nil {
			return "", err
		}
		buf.Emit(op.Ineg)
		return bytecode.Int, nil
	case "!":
		if err := g.generateInt(ctx, node.X, node.Op); err != nil {
			return "", err
		}
		buf.Emit(op.Iconst1)
		buf.Emit(op.Ixor)
		return bytecode.Boolean, nil
	}
	return "", errorAt(errors.E1003, node, "unknown prefix operator %s", node.Op)
}

func (g *Generator) infix(ctx *compiler.Context, node *ast.Infix) (string, error) {
	switch node.Op {
	case "&&", "||":
		return g.logical(ctx, node)
	case "==", "!=", "<", "<=", ">", ">=":
		return g.compare(ctx, node)
	}
	code, ok := arithmetic[node.Op]
	if !ok {
		return "", errorAt(errors.E1003, node, "unknown operator %s", node.Op)
	}
	if node.Op == "+" {
		desc, err := g.types.TypeOf(ctx, node)
		if err != nil {
			return "", err
		}
		if desc == bytecode.StringType {
			return g.concat(ctx, node)
		}
	}
	if err := g.generateInt(ctx, node.X, node.Op); err != nil {
		return "", err
	}
	if err := g.generateInt(ctx, node.Y, node.Op); err != nil {
		return "", err
	}
	ctx.Code.Emit(code)
	return bytecode.Int, nil
}

// concat builds a string with a StringBuilder.
func (g *Generator) concat(ctx *compiler.Context, node *ast.Infix) (string, error) {
	buf := ctx.Code
	pool := ctx.Pool
	buf.EmitU2(op.New, pool.Class(builderClass))
	buf.Emit(op.Dup)
	buf.EmitInvoke(op.Invokespecial, pool.Methodref(builderClass, "<init>", "()V"), 0)
	for _, part := range []ast.Expr{node.X, node.Y} {
		desc, err := g.Generate(ctx, part)
		if err != nil {
			return "", err
		}
		arg := appendArgument(desc)
		buf.EmitInvoke(op.Invokevirtual, pool.Methodref(builderClass, "append", "("+arg+")Ljava/lang/StringBuilder;"), 1)
	}
	buf.EmitInvoke(op.Invokevirtual, pool.Methodref(builderClass, "toString", "()Ljava/lang/String;"), 0)
	return bytecode.StringType, nil
}

func appendArgument(desc string) string {
	switch desc {
	case bytecode.Int, bytecode.Short, bytecode.Byte:
		return bytecode.Int
	case bytecode.Boolean, bytecode.Char, bytecode.Long, bytecode.Double, bytecode.Float, bytecode.StringType:
		return desc
	}
	return bytecode.ObjectType
}

// compare materializes a comparison as 0 or 1.
func (g *Generator) compare(ctx *compiler.Context, node *ast.Infix) (string, error) {
	buf := ctx.Code
	left, err := g.Generate(ctx, node.X)
	if err != nil {
		return "", err
	}
	right, err := g.Generate(ctx, node.Y)
	if err != nil {
		return "", err
	}
	var branch op.Code
	switch {
	case bytecode.IsIntLike(left) && bytecode.IsIntLike(right):
		branch = op.CompareOpType(node.Op).IntCompare()
	case bytecode.IsReference(left) && bytecode.IsReference(right) && node.Op == "==":
		branch = op.IfAcmpeq
	case bytecode.IsReference(left) && bytecode.IsReference(right) && node.Op == "!=":
		branch = op.IfAcmpne
	default:
		return "", errorAt(errors.E2020, node, "cannot compare %s and %s with %s",
			describe(left), describe(right), node.Op)
	}
	return bytecode.Boolean, g.materialize(buf, branch)
}

// materialize pushes 1 if branch is taken and 0 otherwise.
func (g *Generator) materialize(buf *bytecode.CodeBuffer, branch op.Code) error {
	toTrue := buf.EmitPlaceholderJump(branch, bytecode.TwoByte)
	buf.Emit(op.Iconst0)
	toEnd := buf.EmitPlaceholderJump(op.Goto, bytecode.TwoByte)
	if err := buf.Resolve(toTrue, buf.Offset()); err != nil {
		return err
	}
	buf.Emit(op.Iconst1)
	return buf.Resolve(toEnd, buf.Offset())
}

// logical emits && and || with short-circuit evaluation.
func (g *Generator) logical(ctx *compiler.Context, node *ast.Infix) (string, error) {
	buf := ctx.Code
	// && jumps out when an operand is false, || when one is true.
	exitOn, result := op.Ifeq, op.Iconst1
	if node.Op == "||" {
		exitOn, result = op.Ifne, op.Iconst0
	}
	var exits []bytecode.JumpPatch
	for _, operand := range []ast.Expr{node.X, node.Y} {
		if err := g.generateInt(ctx, operand, node.Op); err != nil {
			return "", err
		}
		exits = append(exits, buf.EmitPlaceholderJump(exitOn, bytecode.TwoByte))
	}
	buf.Emit(result)
	toEnd := buf.EmitPlaceholderJump(op.Goto, bytecode.TwoByte)
	for _, exit := range exits {
		if err := buf.Resolve(exit, buf.Offset()); err != nil {
			return "", err
		}
	}
	if result == op.Iconst1 {
		buf.Emit(op.Iconst0)
	} else {
		buf.Emit(op.Iconst1)
	}
	if err := buf.Resolve(toEnd, buf.Offset()); err != nil {
		return "", err
	}
	return bytecode.Boolean, nil
}

func (g *Generator) assign(ctx *compiler.Context, node *ast.Assign) (string, error) {
	buf := ctx.Code
	local, ok := ctx.Locals.Lookup(node.Name.Name)
	if !ok {
		return "", undefinedVariable(ctx, node.Name)
	}
	if node.Op == "=" {
		desc, err := g.Generate(ctx, node.Value)
		if err != nil {
			return "", err
		}
		if !bytecode.Assignable(desc, local.Descriptor) {
			return "", errorAt(errors.E2020, node.Value, "cannot assign %s to %s of type %s",
				describe(desc), local.Name, describe(local.Descriptor))
		}
	} else {
		code, ok := arithmetic[node.Op[:len(node.Op)-1]]
		if !ok {
			return "", errorAt(errors.E1005, node, "unknown assignment operator %s", node.Op)
		}
		if !bytecode.IsIntLike(local.Descriptor) {
			return "", errorAt(errors.E2020, node, "operator %s requires an int variable, %s is %s",
				node.Op, local.Name, describe(local.Descriptor))
		}
		buf.EmitLoad(local.Descriptor, local.Slot)
		if err := g.generateInt(ctx, node.Value, node.Op); err != nil {
			return "", err
		}
		buf.Emit(code)
	}
	if bytecode.SlotSize(local.Descriptor) == 2 {
		buf.Emit(op.Dup2)
	} else {
		buf.Emit(op.Dup)
	}
	buf.EmitStore(local.Descriptor, local.Slot)
	return local.Descriptor, nil
}

// GenerateEffect emits expr for its side effects only. An increment whose
// value is discarded is a single iinc.
func (g *Generator) GenerateEffect(ctx *compiler.Context, expr ast.Expr) error {
	if node, ok := expr.(*ast.Postfix); ok {
		local, err := g.incrementable(ctx, node)
		if err != nil {
			return err
		}
		ctx.Code.EmitIinc(local.Slot, postfixDelta(node))
		return nil
	}
	desc, err := g.Generate(ctx, expr)
	if err != nil {
		return err
	}
	ctx.Code.EmitPop(desc)
	return nil
}

// postfix evaluates to the old value of an int local.
func (g *Generator) postfix(ctx *compiler.Context, node *ast.Postfix) (string, error) {
	local, err := g.incrementable(ctx, node)
	if err != nil {
		return "", err
	}
	ctx.Code.EmitLoad(bytecode.Int, local.Slot)
	ctx.Code.EmitIinc(local.Slot, postfixDelta(node))
	return bytecode.Int, nil
}

func (g *Generator) incrementable(ctx *compiler.Context, node *ast.Postfix) (compiler.Local, error) {
	local, ok := ctx.Locals.Lookup(node.X.Name)
	if !ok {
		return local, undefinedVariable(ctx, node.X)
	}
	if local.Descriptor != bytecode.Int {
		return local, errorAt(errors.E2020, node, "operator %s requires an int variable, %s is %s",
			node.Op, local.Name, describe(local.Descriptor))
	}
	return local, nil
}

func postfixDelta(node *ast.Postfix) int {
	if node.Op == "--" {
		return -1
	}
	return 1
}

func (g *Generator) call(ctx *compiler.Context, node *ast.Call) (string, error) {
	fn, err := g.functions.lookup(node.Fun)
	if err != nil {
		return "", err
	}
	desc, err := bytecode.ParseMethodDescriptor(fn.Descriptor)
	if err != nil {
		return "", errorAt(errors.E2002, node.Fun, "function %s: %v", node.Fun.Name, err)
	}
	if len(node.Args) != len(desc.Params) {
		return "", errorAt(errors.E2020, node, "%s takes %d arguments, got %d",
			node.Fun.Name, len(desc.Params), len(node.Args))
	}
	for i, arg := range node.Args {
		argDesc, err := g.Generate(ctx, arg)
		if err != nil {
			return "", err
		}
		if !bytecode.Assignable(argDesc, desc.Params[i]) {
			return "", errorAt(errors.E2020, arg, "argument %d of %s must be %s, not %s",
				i+1, node.Fun.Name, describe(desc.Params[i]), describe(argDesc))
		}
	}
	index := ctx.Pool.Methodref(fn.Owner, fn.Name, fn.Descriptor)
	ctx.Code.EmitInvoke(op.Invokestatic, index, desc.ArgSlots())
	return desc.Return, nil
}

// describe renders a descriptor the way it is written in annotations.
func describe(desc string) string {
	for name, d := range primitiveNames {
		if d == desc {
			return name
		}
	}
	if bytecode.IsArray(desc) {
		return describe(bytecode.ElementType(desc)) + "[]"
	}
	return bytecode.ClassName(desc)
}

var primitiveNames = map[string]string{
	"void":    bytecode.Void,
	"int":     bytecode.Int,
	"boolean": bytecode.Boolean,
	"long":    bytecode.Long,
	"double":  bytecode.Double,
	"float":   bytecode.Float,
	"char":    bytecode.Char,
	"byte":    bytecode.Byte,
	"short":   bytecode.Short,
}
