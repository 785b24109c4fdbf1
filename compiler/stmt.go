package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	code := c.current
	code.markLine(c.location(stmt.Pos()))
	switch node := stmt.(type) {
	case *ast.Block:
		return c.compileBlock(node)
	case *ast.ExprStmt:
		return c.compileExprStmt(node)
	case *ast.Var:
		return c.compileVar(node)
	case *ast.If:
		return c.compileIf(node)
	case *ast.For:
		return c.compileFor(node)
	case *ast.While:
		return c.compileWhile(node)
	case *ast.DoWhile:
		return c.compileDoWhile(node)
	case *ast.ForIn:
		return c.compileForIn(node)
	case *ast.ForOf:
		return c.compileForOf(node)
	case *ast.Labeled:
		return c.compileLabeled(node)
	case *ast.Break:
		return c.compileBreak(node)
	case *ast.Continue:
		return c.compileContinue(node)
	case *ast.Return:
		return c.compileReturn(node)
	case *ast.Throw:
		return c.compileThrow(node)
	case *ast.Try:
		return c.compileTry(node)
	case *ast.Switch:
		return c.compileSwitch(node)
	case *ast.Using:
		// A using declaration protects the rest of its block; a lone one
		// protects nothing.
		return c.compileUsing(node, nil)
	case *ast.Empty:
		return nil
	default:
		return c.errorf(errors.E1011, stmt.Pos(), "unknown statement type: %T", stmt)
	}
}

// compileBlock compiles the statements of a block in a new scope.
// Statements that can no longer be reached are not emitted.
func (c *Compiler) compileBlock(node *ast.Block) error {
	locals := c.current.locals
	locals.EnterScope()
	defer locals.ExitScope()
	return c.compileStmts(node.Stmts)
}

// compileStmts compiles a statement list in the current scope.
func (c *Compiler) compileStmts(stmts []ast.Stmt) error {
	for i, stmt := range stmts {
		if !c.current.buf.Reachable() {
			break
		}
		if using, ok := stmt.(*ast.Using); ok {
			c.current.markLine(c.location(using.Pos()))
			return c.compileUsing(using, stmts[i+1:])
		}
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileExprStmt(node *ast.ExprStmt) error {
	if effects, ok := c.exprs.(EffectGenerator); ok {
		if err := effects.GenerateEffect(c.current.ctx, node.X); err != nil {
			return c.decorate(err, node.X.Pos())
		}
		return nil
	}
	desc, err := c.generate(node.X)
	if err != nil {
		return err
	}
	c.current.buf.EmitPop(desc)
	return nil
}

func (c *Compiler) compileVar(node *ast.Var) error {
	code := c.current
	var desc string
	if node.Type != "" {
		resolved, err := c.types.ResolveAnnotation(node.Type)
		if err != nil {
			return c.decorate(err, node.Pos())
		}
		if resolved == bytecode.Void {
			return c.errorf(errors.E2021, node.Pos(), "variable %s cannot have type void", node.Name.Name)
		}
		desc = resolved
	}
	if node.Value == nil {
		if desc == "" {
			desc = bytecode.ObjectType
		}
		code.buf.EmitPushDefault(desc)
	} else {
		valueDesc, err := c.generate(node.Value)
		if err != nil {
			return err
		}
		if desc == "" {
			desc = valueDesc
		} else if !bytecode.Assignable(valueDesc, desc) {
			return c.errorf(errors.E2020, node.Value.Pos(),
				"cannot assign %s to %s of type %s", typeName(valueDesc), node.Name.Name, typeName(desc))
		}
	}
	if desc == bytecode.Void {
		return c.errorf(errors.E2020, node.Value.Pos(), "%s has no value", node.Value)
	}
	slot, err := c.declare(node.Name, desc)
	if err != nil {
		return err
	}
	code.buf.EmitStore(desc, slot)
	return nil
}

// typeName renders a descriptor for error messages.
func typeName(desc string) string {
	switch desc {
	case bytecode.Void:
		return "void"
	case bytecode.Int:
		return "int"
	case bytecode.Boolean:
		return "boolean"
	case bytecode.Long:
		return "long"
	case bytecode.Double:
		return "double"
	case bytecode.Float:
		return "float"
	case bytecode.Char:
		return "char"
	case bytecode.Byte:
		return "byte"
	case bytecode.Short:
		return "short"
	}
	if bytecode.IsArray(desc) {
		return typeName(bytecode.ElementType(desc)) + "[]"
	}
	return bytecode.ClassName(desc)
}

func (c *Compiler) compileReturn(node *ast.Return) error {
	code := c.current
	returnType := code.returnType
	if node.Value == nil {
		if returnType != bytecode.Void {
			return c.errorf(errors.E2005, node.Pos(), "missing return value in method returning %s", typeName(returnType))
		}
		return c.earlyExit(0, func() error {
			code.buf.EmitReturn(bytecode.Void)
			return nil
		})
	}
	if returnType == bytecode.Void {
		return c.errorf(errors.E2005, node.Value.Pos(), "void method %s cannot return a value", code.name)
	}
	desc, err := c.generate(node.Value)
	if err != nil {
		return err
	}
	if !bytecode.Assignable(desc, returnType) {
		return c.errorf(errors.E2005, node.Value.Pos(),
			"cannot return %s from method returning %s", typeName(desc), typeName(returnType))
	}
	if !c.hasIdleFinally(0) {
		code.buf.EmitReturn(returnType)
		return nil
	}
	// Finally bodies run between computing the value and returning it, so
	// the value waits in a temporary.
	slot, err := c.temp(returnType, node.Value.Pos())
	if err != nil {
		return err
	}
	code.buf.EmitStore(returnType, slot)
	return c.earlyExit(0, func() error {
		code.buf.EmitLoad(returnType, slot)
		code.buf.EmitReturn(returnType)
		return nil
	})
}

func (c *Compiler) compileBreak(node *ast.Break) error {
	code := c.current
	var frame *labelFrame
	if node.Label == nil {
		f, ok := code.breaks.innermost()
		if !ok {
			return c.errorf(errors.E2003, node.Pos(), "break statement outside of loop or switch")
		}
		frame = f
	} else {
		f, ok := code.breaks.find(node.Label.Name)
		if !ok {
			return c.labelNotFound(node.Label, code.breaks.names())
		}
		frame = f
	}
	return c.jumpToFrame(frame)
}

func (c *Compiler) compileContinue(node *ast.Continue) error {
	code := c.current
	var frame *labelFrame
	if node.Label == nil {
		f, ok := code.continues.innermost()
		if !ok {
			return c.errorf(errors.E2004, node.Pos(), "continue statement outside of loop")
		}
		frame = f
	} else {
		f, ok := code.continues.find(node.Label.Name)
		if !ok {
			if _, isBlock := code.breaks.find(node.Label.Name); isBlock {
				return c.errorf(errors.E2004, node.Label.Pos(),
					"continue cannot target %s, which does not label a loop", node.Label.Name)
			}
			return c.labelNotFound(node.Label, code.continues.names())
		}
		frame = f
	}
	return c.jumpToFrame(frame)
}

func (c *Compiler) labelNotFound(label *ast.Ident, candidates []string) error {
	err := c.errorf(errors.E2011, label.Pos(), "label %s not found", label.Name)
	if suggestions := errors.SuggestSimilar(label.Name, candidates); len(suggestions) > 0 {
		err.WithSuggestions(suggestions)
	}
	return err
}

// jumpToFrame emits a jump to the frame's target, running the finally
// bodies between here and the frame first.
func (c *Compiler) jumpToFrame(frame *labelFrame) error {
	buf := c.current.buf
	return c.earlyExit(frame.finallyDepth, func() error {
		if frame.target >= 0 {
			return buf.EmitJumpTo(op.Goto, frame.target, c.width())
		}
		frame.pending = append(frame.pending, buf.EmitPlaceholderJump(op.Goto, c.width()))
		return nil
	})
}

func (c *Compiler) compileLabeled(node *ast.Labeled) error {
	code := c.current
	var labels []string
	body := ast.Stmt(node)
	for {
		labeled, ok := body.(*ast.Labeled)
		if !ok {
			break
		}
		name := labeled.Label.Name
		_, outer := code.breaks.find(name)
		if outer || contains(labels, name) {
			return c.errorf(errors.E2018, labeled.Label.Pos(), "label %s is already declared", name)
		}
		labels = append(labels, name)
		body = labeled.Stmt
	}
	switch body.(type) {
	case *ast.For, *ast.While, *ast.DoWhile, *ast.ForIn, *ast.ForOf, *ast.Switch:
		code.labels = labels
		return c.compileStmt(body)
	}
	frame := newLabelFrame(labels, len(code.finallys))
	frame.namedOnly = true
	code.breaks.push(frame)
	defer code.breaks.pop(frame)
	if err := c.compileStmt(body); err != nil {
		return err
	}
	return frame.resolve(code.buf, code.buf.Offset())
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (c *Compiler) compileThrow(node *ast.Throw) error {
	desc, err := c.generate(node.Value)
	if err != nil {
		return err
	}
	if !bytecode.IsReference(desc) {
		return c.errorf(errors.E2020, node.Value.Pos(), "cannot throw a value of type %s", typeName(desc))
	}
	c.current.buf.Emit(op.Athrow)
	return nil
}
