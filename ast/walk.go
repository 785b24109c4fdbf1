package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

// Children returns the direct, non-nil children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		switch x := n.(type) {
		case nil:
			return
		case *Ident:
			if x == nil {
				return
			}
		case *Block:
			if x == nil {
				return
			}
		}
		out = append(out, n)
	}
	switch n := node.(type) {
	case *Class:
		for _, m := range n.Methods {
			add(m)
		}
	case *Method:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Param:
		add(n.Name)

	// Statements
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *ExprStmt:
		add(n.X)
	case *Var:
		add(n.Name)
		add(n.Value)
	case *If:
		add(n.Cond)
		add(n.Consequence)
		add(n.Alternative)
	case *For:
		add(n.Init)
		add(n.Cond)
		add(n.Post)
		add(n.Body)
	case *While:
		add(n.Cond)
		add(n.Body)
	case *DoWhile:
		add(n.Body)
		add(n.Cond)
	case *ForIn:
		add(n.Name)
		add(n.Iter)
		add(n.Body)
	case *ForOf:
		add(n.Name)
		add(n.Pattern)
		add(n.Iter)
		add(n.Body)
	case *Labeled:
		add(n.Label)
		add(n.Stmt)
	case *Break:
		add(n.Label)
	case *Continue:
		add(n.Label)
	case *Return:
		add(n.Value)
	case *Throw:
		add(n.Value)
	case *Try:
		add(n.Body)
		for _, c := range n.Catches {
			add(c)
		}
		add(n.Finally)
	case *Catch:
		add(n.Param)
		add(n.Pattern)
		add(n.Body)
	case *Switch:
		add(n.Value)
		for _, c := range n.Cases {
			add(c)
		}
	case *Case:
		add(n.Value)
		for _, s := range n.Body {
			add(s)
		}
	case *Using:
		for _, d := range n.Decls {
			add(d)
		}
	case *UsingDecl:
		add(n.Name)
		add(n.Value)

	// Patterns
	case *ArrayPattern:
		for _, e := range n.Names() {
			add(e)
		}
	case *ObjectPattern:
		for _, e := range n.Names() {
			add(e)
		}

	// Expressions
	case *Prefix:
		add(n.X)
	case *Infix:
		add(n.X)
		add(n.Y)
	case *Assign:
		add(n.Name)
		add(n.Value)
	case *Postfix:
		add(n.X)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	}
	return out
}
