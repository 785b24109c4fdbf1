package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

func (c *Compiler) compileIf(node *ast.If) error {
	code := c.current
	buf := code.buf
	if node.Consequence == nil {
		return c.errorf(errors.E1003, node.Pos(), "if statement requires a body")
	}
	jumpIfFalse, err := c.emitCondition(node.Cond, false)
	if err != nil {
		return err
	}
	toElse := buf.EmitPlaceholderJump(jumpIfFalse, c.width())
	if err := c.compileStmt(node.Consequence); err != nil {
		return err
	}
	if node.Alternative == nil {
		return buf.Resolve(toElse, buf.Offset())
	}
	var (
		toEnd    bytecode.JumpPatch
		needsEnd = CanFallThrough(node.Consequence) && buf.Reachable()
	)
	if needsEnd {
		toEnd = buf.EmitPlaceholderJump(op.Goto, c.width())
	}
	if err := buf.Resolve(toElse, buf.Offset()); err != nil {
		return err
	}
	if err := c.compileStmt(node.Alternative); err != nil {
		return err
	}
	if needsEnd {
		return buf.Resolve(toEnd, buf.Offset())
	}
	return nil
}

// isConstantTrue reports whether a loop condition is the literal true or 1.
func isConstantTrue(cond ast.Expr) bool {
	switch x := cond.(type) {
	case nil:
		return true
	case *ast.Bool:
		return x.Value
	case *ast.Int:
		return x.Value == 1
	}
	return false
}

func isZero(expr ast.Expr) bool {
	x, ok := expr.(*ast.Int)
	return ok && x.Value == 0
}

// swapped maps a comparison to the one that holds with its operands
// exchanged.
var swapped = map[op.CompareOpType]op.CompareOpType{
	op.LessThan:           op.GreaterThan,
	op.LessThanOrEqual:    op.GreaterThanOrEqual,
	op.Equal:              op.Equal,
	op.NotEqual:           op.NotEqual,
	op.GreaterThan:        op.LessThan,
	op.GreaterThanOrEqual: op.LessThanOrEqual,
}

// emitCondition emits the operands of a condition and returns the branch
// opcode that jumps when the condition equals when. Comparisons of two int
// values branch on the comparison directly; comparisons against the
// literal 0 use the single-operand form. Any other condition is
// materialized as a boolean.
func (c *Compiler) emitCondition(cond ast.Expr, when bool) (op.Code, error) {
	if infix, ok := cond.(*ast.Infix); ok && op.IsCompareOp(infix.Op) {
		branch, handled, err := c.emitIntComparison(infix)
		if err != nil {
			return 0, err
		}
		if handled {
			if !when {
				branch = op.Negate(branch)
			}
			return branch, nil
		}
	}
	desc, err := c.generate(cond)
	if err != nil {
		return 0, err
	}
	if !bytecode.IsIntLike(desc) {
		return 0, c.errorf(errors.E2020, cond.Pos(), "condition must be a boolean, not %s", typeName(desc))
	}
	if when {
		return op.Ifne, nil
	}
	return op.Ifeq, nil
}

// emitIntComparison emits the operands of an int comparison and returns
// the branch taken when it holds. It reports false, having emitted
// nothing, when the operands are not both ints.
func (c *Compiler) emitIntComparison(infix *ast.Infix) (op.Code, bool, error) {
	left, err := c.typeOf(infix.X)
	if err != nil {
		return 0, false, err
	}
	right, err := c.typeOf(infix.Y)
	if err != nil {
		return 0, false, err
	}
	if !bytecode.IsIntLike(left) || !bytecode.IsIntLike(right) {
		return 0, false, nil
	}
	cmp := op.CompareOpType(infix.Op)
	switch {
	case isZero(infix.Y):
		if _, err := c.generate(infix.X); err != nil {
			return 0, false, err
		}
		return cmp.ZeroCompare(), true, nil
	case isZero(infix.X):
		if _, err := c.generate(infix.Y); err != nil {
			return 0, false, err
		}
		return swapped[cmp].ZeroCompare(), true, nil
	}
	if _, err := c.generate(infix.X); err != nil {
		return 0, false, err
	}
	if _, err := c.generate(infix.Y); err != nil {
		return 0, false, err
	}
	return cmp.IntCompare(), true, nil
}
