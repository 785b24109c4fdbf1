package ast

import (
	"testing"

	"github.com/deepnoodle-ai/jlower/internal/token"
)

func ident(name string) *Ident {
	return &Ident{Name: name}
}

func intLit(v int64, lit string) *Int {
	return &Int{Literal: lit, Value: v}
}

func sampleLoop() *Labeled {
	// outer: for (let i = 0; i < n; i++) { if (i == 3) { break outer } }
	return &Labeled{
		Label: ident("outer"),
		Stmt: &For{
			Init: &Var{Name: ident("i"), Value: intLit(0, "0")},
			Cond: &Infix{X: ident("i"), Op: "<", Y: ident("n")},
			Post: &ExprStmt{X: &Postfix{X: ident("i"), Op: "++"}},
			Body: &Block{Stmts: []Stmt{
				&If{
					Cond:        &Infix{X: ident("i"), Op: "==", Y: intLit(3, "3")},
					Consequence: &Block{Stmts: []Stmt{&Break{Label: ident("outer")}}},
				},
			}},
		},
	}
}

func TestString(t *testing.T) {
	got := sampleLoop().String()
	want := "outer: for (let i = 0; (i < n); i++) { if ((i == 3)) { break outer } }"
	if got != want {
		t.Errorf("String() wrong.\n got=%q\nwant=%q", got, want)
	}
}

func TestStatementStrings(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&Var{Name: ident("s"), Type: "String"}, "let s: String"},
		{&Return{}, "return"},
		{&Continue{Label: ident("scan")}, "continue scan"},
		{&Throw{Value: ident("err")}, "throw err"},
		{&DoWhile{Body: &Block{}, Cond: &Bool{Value: true}}, "do {} while (true)"},
		{&ForOf{Pattern: &ArrayPattern{Elements: []*Ident{ident("k"), ident("v")}}, Iter: ident("m"), Body: &Empty{}},
			"for (let [k, v] of m) ;"},
		{&ForIn{Name: ident("i"), Iter: ident("xs"), Body: &Block{}}, "for (let i in xs) {}"},
		{&Try{
			Body:    &Block{},
			Catches: []*Catch{{Param: ident("e"), Type: "IOException", Body: &Block{}}},
			Finally: &Block{},
		}, "try {} catch (e: IOException) {} finally {}"},
		{&Try{Body: &Block{}, Catches: []*Catch{{Body: &Block{}}}}, "try {} catch {}"},
		{&Switch{
			Value: ident("x"),
			Cases: []*Case{
				{Value: &Prefix{Op: "-", X: intLit(1, "1")}, Body: []Stmt{&Break{}}},
				{Default: true},
			},
		}, "switch (x) { case (-1): break; default: }"},
		{&Using{Decls: []*UsingDecl{
			{Name: ident("a"), Value: &Call{Fun: ident("open"), Args: []Expr{&String{Value: "a"}}}},
			{Name: ident("b"), Type: "Closeable", Value: &Null{}},
		}}, `using a = open("a"), b: Closeable = null`},
		{&ObjectPattern{Bindings: []ObjectBinding{{Key: "a", Name: ident("a")}, {Key: "b", Name: ident("c")}}}, "{ a, b: c }"},
		{&ExprStmt{X: &Assign{Name: ident("x"), Op: "+=", Value: intLit(2, "2")}}, "x += 2"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPositions(t *testing.T) {
	pos := token.Position{Line: 2, Column: 4, File: "m.yaml"}
	id := &Ident{NamePos: pos, Name: "outer"}
	if id.End() != pos.Advance(5) {
		t.Errorf("Ident.End() = %v", id.End())
	}
	br := &Break{Break: pos}
	if br.End() != pos.Advance(5) {
		t.Errorf("Break.End() = %v", br.End())
	}
	lab := &Labeled{Label: id, Stmt: br}
	if lab.Pos() != pos {
		t.Errorf("Labeled.Pos() = %v", lab.Pos())
	}
	var _ Stmt = lab
	var _ Expr = id
	var _ Pattern = &ArrayPattern{}
}

func TestMethodString(t *testing.T) {
	m := &Method{
		Name:    ident("sum"),
		Static:  true,
		Params:  []*Param{{Name: ident("xs"), Type: "int[]"}},
		Returns: "int",
		Body:    &Block{Stmts: []Stmt{&Return{Value: intLit(0, "0")}}},
	}
	if got := m.String(); got != "static sum(xs: int[]): int { return 0 }" {
		t.Errorf("Method.String() = %q", got)
	}
	c := &Class{Name: "demo/Sums", Methods: []*Method{m}}
	if got := c.String(); got != "class demo/Sums { static sum(xs: int[]): int { return 0 } }" {
		t.Errorf("Class.String() = %q", got)
	}
}
