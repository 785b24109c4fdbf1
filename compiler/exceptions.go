package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/internal/token"
	"github.com/deepnoodle-ai/jlower/op"
)

// finallyClause is the cleanup code of a protected region.
type finallyClause struct {
	emit         func() error
	fallsThrough bool
	pos          token.Position
}

// compileTry lowers try/catch/finally. The layout is:
//
//	try body
//	finally copy; goto end
//	catch handlers, each followed by a finally copy and goto end
//	catch-all handler: astore t; finally copy; aload t; athrow
//	end:
func (c *Compiler) compileTry(node *ast.Try) error {
	if node.Body == nil || (len(node.Catches) == 0 && node.Finally == nil) {
		return c.errorf(errors.E2012, node.Pos(), "try statement requires a catch or finally clause")
	}
	for _, clause := range node.Catches {
		if clause.Body == nil {
			return c.errorf(errors.E2012, clause.Pos(), "catch clause requires a body")
		}
		if clause.Param != nil && clause.Pattern != nil {
			return c.errorf(errors.E2012, clause.Pos(), "catch clause binds both a name and a pattern")
		}
	}
	var finally *finallyClause
	if node.Finally != nil {
		body := node.Finally
		finally = &finallyClause{
			emit:         func() error { return c.compileBlock(body) },
			fallsThrough: CanFallThrough(body),
			pos:          body.Pos(),
		}
	}
	return c.compileProtected(func() error {
		return c.compileBlock(node.Body)
	}, node.Catches, finally)
}

// compileProtected emits a protected region, its catch handlers and, when
// finally is set, the copies of the finally code on every exit path.
func (c *Compiler) compileProtected(body func() error, catches []*ast.Catch, finally *finallyClause) error {
	code := c.current
	buf := code.buf

	var pf *pendingFinally
	if finally != nil {
		pf = c.pushFinally(finally.emit, finally.fallsThrough)
	} else {
		pf = c.pushFinally(nil, true)
	}
	pushed := true
	defer func() {
		if pushed {
			c.popFinally(pf)
		}
	}()

	tryStart := buf.Offset()
	if err := body(); err != nil {
		return err
	}
	tryEnd := buf.Offset()
	catchRanges := protectedRanges(tryStart, tryEnd, pf.gaps)

	// Nothing can throw inside the region, so no handler is reachable.
	if len(catchRanges) == 0 {
		pushed = false
		c.popFinally(pf)
		if finally != nil && buf.Reachable() {
			return finally.emit()
		}
		return nil
	}

	var exits []bytecode.JumpPatch
	if buf.Reachable() {
		if err := c.leaveProtected(pf, &exits); err != nil {
			return err
		}
	}
	for _, clause := range catches {
		if err := c.compileCatch(clause, catchRanges, pf, &exits); err != nil {
			return err
		}
	}
	catchEnd := buf.Offset()

	pushed = false
	c.popFinally(pf)
	if finally != nil {
		if ranges := protectedRanges(tryStart, catchEnd, pf.gaps); len(ranges) > 0 {
			if err := c.compileCatchAll(ranges, finally); err != nil {
				return err
			}
		}
	}
	end := buf.Offset()
	for _, patch := range exits {
		if err := buf.Resolve(patch, end); err != nil {
			return err
		}
	}
	return nil
}

// leaveProtected emits the normal exit from a try body or catch clause: a
// copy of the finally code followed by a jump past the handlers. The copy
// and the jump form a gap in the protected ranges.
func (c *Compiler) leaveProtected(pf *pendingFinally, exits *[]bytecode.JumpPatch) error {
	buf := c.current.buf
	start := buf.Offset()
	if pf.emit != nil {
		if err := c.inlineFinally(pf); err != nil {
			return err
		}
	}
	if pf.fallsThrough && buf.Reachable() {
		*exits = append(*exits, buf.EmitPlaceholderJump(op.Goto, c.width()))
	}
	if end := buf.Offset(); pf.emit != nil && end > start {
		pf.gaps = append(pf.gaps, gap{start: start, end: end})
	}
	return nil
}

func (c *Compiler) compileCatch(clause *ast.Catch, ranges []gap, pf *pendingFinally, exits *[]bytecode.JumpPatch) error {
	code := c.current
	buf := code.buf

	desc := bytecode.ThrowableType
	catchType := ""
	if clause.Type != "" {
		resolved, err := c.types.ResolveAnnotation(clause.Type)
		if err != nil {
			return c.decorate(err, clause.Pos())
		}
		if !bytecode.IsReference(resolved) || bytecode.IsArray(resolved) {
			return c.errorf(errors.E2020, clause.Pos(), "cannot catch values of type %s", clause.Type)
		}
		desc = resolved
		catchType = bytecode.ClassName(resolved)
	}

	handler := buf.Offset()
	buf.MarkHandler(handler)
	for _, r := range ranges {
		code.handlers = append(code.handlers, &ExceptionHandler{
			Start:     r.start,
			End:       r.end,
			Handler:   handler,
			CatchType: catchType,
		})
	}

	code.locals.EnterScope()
	defer code.locals.ExitScope()
	switch {
	case clause.Param != nil:
		slot, err := c.declare(clause.Param, desc)
		if err != nil {
			return err
		}
		buf.EmitStore(desc, slot)
	case clause.Pattern != nil:
		slot, err := c.temp(desc, clause.Pattern.Pos())
		if err != nil {
			return err
		}
		buf.EmitStore(desc, slot)
		if err := c.destructure(slot, desc, clause.Pattern); err != nil {
			return err
		}
	default:
		buf.Emit(op.Pop)
	}
	if err := c.compileBlock(clause.Body); err != nil {
		return err
	}
	if buf.Reachable() {
		return c.leaveProtected(pf, exits)
	}
	return nil
}

// compileCatchAll emits the handler that runs the finally code for any
// exception and rethrows it.
func (c *Compiler) compileCatchAll(ranges []gap, finally *finallyClause) error {
	code := c.current
	buf := code.buf
	handler := buf.Offset()
	buf.MarkHandler(handler)
	for _, r := range ranges {
		code.handlers = append(code.handlers, &ExceptionHandler{
			Start:   r.start,
			End:     r.end,
			Handler: handler,
		})
	}
	code.locals.EnterScope()
	defer code.locals.ExitScope()
	slot, err := c.temp(bytecode.ThrowableType, finally.pos)
	if err != nil {
		return err
	}
	buf.EmitStore(bytecode.ThrowableType, slot)
	if err := finally.emit(); err != nil {
		return err
	}
	if finally.fallsThrough && buf.Reachable() {
		buf.EmitLoad(bytecode.ThrowableType, slot)
		buf.Emit(op.Athrow)
	}
	return nil
}

// compileUsing lowers using declarations to nested protected regions, one
// per declarator, each disposing its resource when left. The rest of the
// enclosing block is the innermost region.
func (c *Compiler) compileUsing(node *ast.Using, rest []ast.Stmt) error {
	if len(node.Decls) == 0 {
		return c.errorf(errors.E1003, node.Pos(), "using declaration requires at least one resource")
	}
	locals := c.current.locals
	locals.EnterScope()
	defer locals.ExitScope()
	return c.compileResources(node.Decls, rest)
}

func (c *Compiler) compileResources(decls []*ast.UsingDecl, rest []ast.Stmt) error {
	if len(decls) == 0 {
		return c.compileStmts(rest)
	}
	code := c.current
	decl := decls[0]
	desc, err := c.generate(decl.Value)
	if err != nil {
		return err
	}
	if decl.Type != "" {
		annotated, err := c.types.ResolveAnnotation(decl.Type)
		if err != nil {
			return c.decorate(err, decl.Pos())
		}
		if !bytecode.Assignable(desc, annotated) {
			return c.errorf(errors.E2020, decl.Value.Pos(),
				"cannot assign %s to %s of type %s", typeName(desc), decl.Name.Name, typeName(annotated))
		}
		desc = annotated
	}
	if !bytecode.IsReference(desc) {
		return c.errorf(errors.E2020, decl.Value.Pos(),
			"resource %s must be an object, not %s", decl.Name.Name, typeName(desc))
	}
	slot, err := c.declare(decl.Name, desc)
	if err != nil {
		return err
	}
	code.buf.EmitStore(desc, slot)
	dispose := &finallyClause{
		emit:         func() error { return c.emitDispose(desc, slot) },
		fallsThrough: true,
		pos:          decl.Pos(),
	}
	return c.compileProtected(func() error {
		return c.compileResources(decls[1:], rest)
	}, nil, dispose)
}

// emitDispose closes the resource in slot unless it is null.
func (c *Compiler) emitDispose(desc string, slot int) error {
	code := c.current
	buf := code.buf
	buf.EmitLoad(desc, slot)
	skip := buf.EmitPlaceholderJump(op.Ifnull, c.width())
	buf.EmitLoad(desc, slot)
	buf.EmitInvoke(op.Invokeinterface, code.ctx.Pool.InterfaceMethodref("java/lang/AutoCloseable", "close", "()V"), 0)
	return buf.Resolve(skip, buf.Offset())
}
