package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/op"
)

type loop struct {
	code      *Code
	breaks    *labelFrame
	continues *labelFrame
}

// startLoop pushes the break and continue frames of a loop, taking any
// labels waiting for it. A continue target of -1 is resolved later.
func (c *Compiler) startLoop(continueTarget int) *loop {
	code := c.current
	labels := code.takeLabels()
	l := &loop{
		code:      code,
		breaks:    newLabelFrame(labels, len(code.finallys)),
		continues: newLabelFrame(labels, len(code.finallys)),
	}
	l.continues.target = continueTarget
	code.breaks.push(l.breaks)
	code.continues.push(l.continues)
	return l
}

func (l *loop) end() {
	l.code.continues.pop(l.continues)
	l.code.breaks.pop(l.breaks)
}

// continued reports whether any continue statement jumps forward to the
// continue target.
func (l *loop) continued() bool {
	return len(l.continues.pending) > 0
}

// compileFor lowers a C-style loop:
//
//	init
//	test: if !cond goto end
//	body
//	update: post
//	goto test
//	end:
func (c *Compiler) compileFor(node *ast.For) error {
	code := c.current
	buf := code.buf
	labels := code.takeLabels()
	code.locals.EnterScope()
	defer code.locals.ExitScope()
	if node.Init != nil {
		if err := c.compileStmt(node.Init); err != nil {
			return err
		}
	}
	code.labels = labels

	test := buf.Offset()
	var (
		exit     bytecode.JumpPatch
		infinite = isConstantTrue(node.Cond)
	)
	if !infinite {
		jumpIfFalse, err := c.emitCondition(node.Cond, false)
		if err != nil {
			return err
		}
		exit = buf.EmitPlaceholderJump(jumpIfFalse, c.width())
	}

	l := c.startLoop(-1)
	defer l.end()
	if err := c.compileStmt(node.Body); err != nil {
		return err
	}
	// The update runs only if the body can complete or a continue
	// reaches it.
	reachesUpdate := (CanFallThrough(node.Body) && buf.Reachable()) || l.continued()
	if err := l.continues.resolve(buf, buf.Offset()); err != nil {
		return err
	}
	if reachesUpdate {
		if node.Post != nil {
			if err := c.compileStmt(node.Post); err != nil {
				return err
			}
		}
		if err := buf.EmitJumpTo(op.Goto, test, c.width()); err != nil {
			return err
		}
	}
	if !infinite {
		if err := buf.Resolve(exit, buf.Offset()); err != nil {
			return err
		}
	}
	return l.breaks.resolve(buf, buf.Offset())
}

// compileWhile lowers a loop that tests before each iteration. Continue
// jumps straight back to the test.
func (c *Compiler) compileWhile(node *ast.While) error {
	code := c.current
	buf := code.buf
	test := buf.Offset()
	var (
		exit     bytecode.JumpPatch
		infinite = isConstantTrue(node.Cond)
	)
	if !infinite {
		jumpIfFalse, err := c.emitCondition(node.Cond, false)
		if err != nil {
			return err
		}
		exit = buf.EmitPlaceholderJump(jumpIfFalse, c.width())
	}

	l := c.startLoop(test)
	defer l.end()
	code.locals.EnterScope()
	defer code.locals.ExitScope()
	if err := c.compileStmt(node.Body); err != nil {
		return err
	}
	if CanFallThrough(node.Body) && buf.Reachable() {
		if err := buf.EmitJumpTo(op.Goto, test, c.width()); err != nil {
			return err
		}
	}
	if !infinite {
		if err := buf.Resolve(exit, buf.Offset()); err != nil {
			return err
		}
	}
	return l.breaks.resolve(buf, buf.Offset())
}

// compileDoWhile lowers a loop that tests after each iteration, jumping
// back to the body start while the condition holds. Continue jumps to the
// test.
func (c *Compiler) compileDoWhile(node *ast.DoWhile) error {
	code := c.current
	buf := code.buf
	start := buf.Offset()

	l := c.startLoop(-1)
	defer l.end()
	code.locals.EnterScope()
	if err := c.compileStmt(node.Body); err != nil {
		code.locals.ExitScope()
		return err
	}
	code.locals.ExitScope()

	reachesTest := (CanFallThrough(node.Body) && buf.Reachable()) || l.continued()
	if err := l.continues.resolve(buf, buf.Offset()); err != nil {
		return err
	}
	if reachesTest {
		if isConstantTrue(node.Cond) {
			if err := buf.EmitJumpTo(op.Goto, start, c.width()); err != nil {
				return err
			}
		} else {
			jumpIfTrue, err := c.emitCondition(node.Cond, true)
			if err != nil {
				return err
			}
			if err := buf.EmitJumpTo(jumpIfTrue, start, c.width()); err != nil {
				return err
			}
		}
	}
	return l.breaks.resolve(buf, buf.Offset())
}
