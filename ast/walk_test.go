package ast

import (
	"testing"
)

func TestInspectCountsNodes(t *testing.T) {
	var breaks, idents int
	Inspect(sampleLoop(), func(n Node) bool {
		switch n.(type) {
		case *Break:
			breaks++
		case *Ident:
			idents++
		}
		return true
	})
	if breaks != 1 {
		t.Errorf("breaks = %d, want 1", breaks)
	}
	// outer, i (decl), i, n, i (postfix), i, outer (break label)
	if idents != 7 {
		t.Errorf("idents = %d, want 7", idents)
	}
}

func TestInspectPrune(t *testing.T) {
	var visited []string
	Inspect(sampleLoop(), func(n Node) bool {
		if _, ok := n.(*If); ok {
			visited = append(visited, "if")
			return false
		}
		if _, ok := n.(*Break); ok {
			visited = append(visited, "break")
		}
		return true
	})
	if len(visited) != 1 || visited[0] != "if" {
		t.Errorf("visited = %v, want [if]", visited)
	}
}

func TestPreorderStopsEarly(t *testing.T) {
	var kinds []string
	for n := range Preorder(sampleLoop()) {
		switch n.(type) {
		case *Labeled:
			kinds = append(kinds, "labeled")
		case *For:
			kinds = append(kinds, "for")
		case *Var:
			kinds = append(kinds, "var")
		}
		if len(kinds) == 3 {
			break
		}
	}
	want := []string{"labeled", "for", "var"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestChildrenSkipsNil(t *testing.T) {
	children := Children(&Try{Body: &Block{}, Finally: nil})
	if len(children) != 1 {
		t.Errorf("len(children) = %d, want 1", len(children))
	}
	children = Children(&Break{})
	if len(children) != 0 {
		t.Errorf("len(children) = %d, want 0", len(children))
	}
	children = Children(&ForOf{Name: ident("x"), Iter: ident("xs"), Body: &Empty{}})
	if len(children) != 3 {
		t.Errorf("len(children) = %d, want 3", len(children))
	}
}

type countingVisitor struct{ n *int }

func (v countingVisitor) Visit(node Node) Visitor {
	*v.n++
	return v
}

func TestWalkVisitsMethod(t *testing.T) {
	m := &Method{
		Name:   ident("f"),
		Params: []*Param{{Name: ident("x"), Type: "int"}},
		Body:   &Block{Stmts: []Stmt{&Return{Value: ident("x")}}},
	}
	n := 0
	Walk(countingVisitor{&n}, m)
	// method, name, param, param name, block, return, x
	if n != 7 {
		t.Errorf("visited %d nodes, want 7", n)
	}
}
