package compiler

import "github.com/deepnoodle-ai/jlower/ast"

// CanFallThrough reports whether control can complete the statement
// normally and continue with the statement after it. It is conservative:
// loops, switches, labeled statements and try statements are assumed to
// fall through unless a finally body cannot.
func CanFallThrough(stmt ast.Stmt) bool {
	switch node := stmt.(type) {
	case nil:
		return true
	case *ast.Break, *ast.Continue, *ast.Return, *ast.Throw:
		return false
	case *ast.Block:
		for _, s := range node.Stmts {
			if !CanFallThrough(s) {
				return false
			}
		}
		return true
	case *ast.If:
		if node.Alternative == nil {
			return true
		}
		return CanFallThrough(node.Consequence) || CanFallThrough(node.Alternative)
	case *ast.Try:
		if node.Finally != nil && !CanFallThrough(node.Finally) {
			return false
		}
		return true
	}
	return true
}
