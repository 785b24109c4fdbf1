package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"

	"github.com/deepnoodle-ai/jlower/ast"
)

func astHandler(ctx *cli.Context) error {
	if ctx.Bool("no-color") || !isTerminal(os.Stdout) {
		color.Enabled = false
	}

	f, err := readMethodFile(ctx)
	if err != nil {
		return err
	}

	root := nodeToJSON(f.Class)
	if strings.ToLower(ctx.String("output")) == "json" {
		return writeJSON(ctx, os.Stdout, root)
	}
	printAST(os.Stdout, root, 0)
	return nil
}

// ASTNode represents a node in the JSON AST output
type ASTNode struct {
	Type     string     `json:"type"`
	Value    any        `json:"value,omitempty"`
	Line     int        `json:"line,omitempty"`
	Children []*ASTNode `json:"children,omitempty"`
}

func nodeToJSON(node ast.Node) *ASTNode {
	typeName := reflect.TypeOf(node).Elem().Name()
	result := &ASTNode{Type: typeName}
	if pos := node.Pos(); pos.IsValid() {
		result.Line = pos.LineNumber()
	}

	switch n := node.(type) {
	case *ast.Class:
		result.Value = n.Name
	case *ast.Method:
		result.Value = n.Name.Name
		// The name is carried as the value; skip the Ident child.
		for _, child := range ast.Children(n)[1:] {
			result.Children = append(result.Children, nodeToJSON(child))
		}
		return result
	case *ast.Param:
		result.Value = n.String()
		return result
	case *ast.Ident:
		result.Value = n.Name
	case *ast.Int:
		result.Value = n.Value
	case *ast.Bool:
		result.Value = n.Value
	case *ast.String:
		result.Value = n.Value
	case *ast.Var:
		if n.Type != "" {
			result.Value = n.Type
		}
	case *ast.Prefix:
		result.Value = n.Op
	case *ast.Infix:
		result.Value = n.Op
	case *ast.Assign:
		result.Value = n.Op
	case *ast.Postfix:
		result.Value = n.Op
	case *ast.Catch:
		if n.Type != "" {
			result.Value = n.Type
		}
	case *ast.Case:
		if n.Default {
			result.Value = "default"
		}
	case *ast.UsingDecl:
		if n.Type != "" {
			result.Value = n.Type
		}
	}

	for _, child := range ast.Children(node) {
		result.Children = append(result.Children, nodeToJSON(child))
	}
	return result
}

func printAST(w io.Writer, node *ASTNode, depth int) {
	line := strings.Repeat("  ", depth) + color.Colorize(color.BrightCyan, node.Type)
	if node.Value != nil {
		line += " " + color.Colorize(color.Yellow, fmt.Sprintf("%v", node.Value))
	}
	if node.Line > 0 {
		line += " " + color.Colorize(color.BrightBlack, fmt.Sprintf("@%d", node.Line))
	}
	fmt.Fprintln(w, line)
	for _, child := range node.Children {
		printAST(w, child, depth+1)
	}
}
