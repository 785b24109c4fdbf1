// Package ast defines the structured control-flow tree that is lowered to
// JVM bytecode: statements, the small expression language they embed, and
// the method and class containers that hold them.
package ast

import "github.com/deepnoodle-ai/jlower/internal/token"

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a destructuring target that binds parts of a value to locals.
type Pattern interface {
	Node
	patternNode()
}
