package csg

import (
	"errors"
	"testing"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Leaf, "shape"},
		{Add, "union"},
		{Intersect, "intersection"},
		{Subtract, "difference"},
		{Op(42), "Op(42)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}

func TestHasChildrenIffOperator(t *testing.T) {
	nodes := map[string]*Node{
		"leaf":         leaf("a"),
		"union":        add(leaf("a"), leaf("b")),
		"intersection": isect(leaf("a"), leaf("b")),
		"difference":   sub(leaf("a"), leaf("b")),
		"nested":       sub(add(leaf("a"), leaf("b")), isect(leaf("c"), leaf("d"))),
	}
	for name, root := range nodes {
		t.Run(name, func(t *testing.T) {
			root.Walk(func(n *Node, _ int) bool {
				if n.HasChildren() != n.Op().IsOperator() {
					t.Errorf("%s: HasChildren() = %v, IsOperator() = %v", n, n.HasChildren(), n.Op().IsOperator())
				}
				return true
			})
		})
	}
}

func TestHasChildrenAfterNormalize(t *testing.T) {
	root := sub(leaf("a"), add(leaf("c"), isect(leaf("b"), leaf("d"))))
	tr := mustTree(t, root)
	if err := tr.NormalizeRoot(); err != nil {
		t.Fatalf("NormalizeRoot: %v", err)
	}
	tr.Root().Walk(func(n *Node, _ int) bool {
		if n.IsLeaf() && n.HasChildren() {
			t.Errorf("leaf %s reports children", n)
		}
		if n.Op().IsOperator() && !n.HasChildren() {
			t.Errorf("operator %s reports no children", n)
		}
		return true
	})
}

func TestNewOpRejectsMalformed(t *testing.T) {
	a := leaf("a")
	tests := []struct {
		name        string
		op          Op
		left, right *Node
	}{
		{"nil left", Add, nil, leaf("b")},
		{"nil right", Subtract, leaf("a"), nil},
		{"both nil", Intersect, nil, nil},
		{"same child twice", Add, a, a},
		{"leaf kind", Leaf, leaf("a"), leaf("b")},
		{"unknown kind", Op(9), leaf("a"), leaf("b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewOp(tt.op, tt.left, tt.right)
			if !errors.Is(err, ErrMalformedTree) {
				t.Fatalf("NewOp error = %v, want ErrMalformedTree", err)
			}
			if n != nil {
				t.Errorf("NewOp returned node %s on error", n)
			}
		})
	}
}

func TestNewLeafRequiresShape(t *testing.T) {
	if _, err := NewLeaf(nil); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("NewLeaf(nil) error = %v, want ErrMalformedTree", err)
	}
}

func TestSetShape(t *testing.T) {
	t.Run("zero node becomes leaf", func(t *testing.T) {
		var n Node
		if err := n.SetShape(Token("a")); err != nil {
			t.Fatalf("SetShape: %v", err)
		}
		if !n.IsLeaf() || n.HasChildren() {
			t.Errorf("node is not a leaf after SetShape")
		}
		if got := n.Shape().ID(); got != "a" {
			t.Errorf("shape id = %q, want %q", got, "a")
		}
		if err := Validate(&n); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("operator node", func(t *testing.T) {
		n := add(leaf("a"), leaf("b"))
		err := n.SetShape(Token("c"))
		if !errors.Is(err, ErrInvalidNodeState) {
			t.Fatalf("error = %v, want ErrInvalidNodeState", err)
		}
		if !errors.Is(err, ErrMalformedTree) {
			t.Errorf("ErrInvalidNodeState should also match ErrMalformedTree")
		}
		if n.Shape() != nil {
			t.Errorf("operator node gained a shape")
		}
	})

	t.Run("already attached", func(t *testing.T) {
		n := leaf("a")
		if err := n.SetShape(Token("b")); !errors.Is(err, ErrInvalidNodeState) {
			t.Fatalf("error = %v, want ErrInvalidNodeState", err)
		}
		if got := n.Shape().ID(); got != "a" {
			t.Errorf("shape replaced: id = %q", got)
		}
	})

	t.Run("nil shape", func(t *testing.T) {
		var n Node
		if err := n.SetShape(nil); !errors.Is(err, ErrInvalidNodeState) {
			t.Fatalf("error = %v, want ErrInvalidNodeState", err)
		}
	})
}

func TestNodeString(t *testing.T) {
	n := sub(leaf("a"), add(leaf("b"), isect(leaf("c"), leaf("d"))))
	want := `(difference (shape "a") (union (shape "b") (intersection (shape "c") (shape "d"))))`
	if got := n.String(); got != want {
		t.Errorf("String() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestSizeAndDepth(t *testing.T) {
	n := sub(leaf("a"), add(leaf("b"), leaf("c")))
	if got := n.Size(); got != 5 {
		t.Errorf("Size() = %d, want 5", got)
	}
	if got := n.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
	if got := leaf("x").Depth(); got != 1 {
		t.Errorf("leaf Depth() = %d, want 1", got)
	}
}

func TestCloneIsDisjoint(t *testing.T) {
	orig := sub(leaf("a"), add(leaf("b"), leaf("c")))
	cp := orig.Clone()
	if !Equal(orig, cp) {
		t.Fatalf("clone %s differs from %s", cp, orig)
	}
	seen := make(map[*Node]bool)
	orig.Walk(func(n *Node, _ int) bool { seen[n] = true; return true })
	cp.Walk(func(n *Node, _ int) bool {
		if seen[n] {
			t.Errorf("clone shares node %s with original", n)
		}
		return true
	})
	if err := Validate(add(orig, cp)); err != nil {
		t.Errorf("tree joining original and clone is malformed: %v", err)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	n := add(sub(leaf("a"), leaf("b")), leaf("c"))
	var visited []string
	n.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.Op().String())
		return n.Op() != Subtract
	})
	want := []string{"union", "difference", "shape"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %s, want %s", i, visited[i], want[i])
		}
	}
}

func TestMember(t *testing.T) {
	in := map[ShapeID]bool{"a": true, "b": false, "c": true}
	oracle := func(s Shape) bool { return in[s.ID()] }
	tests := []struct {
		name string
		n    *Node
		want bool
	}{
		{"leaf in", leaf("a"), true},
		{"leaf out", leaf("b"), false},
		{"union", add(leaf("a"), leaf("b")), true},
		{"intersection", isect(leaf("a"), leaf("b")), false},
		{"difference keeps", sub(leaf("a"), leaf("b")), true},
		{"difference removes", sub(leaf("a"), leaf("c")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Member(tt.n, oracle); got != tt.want {
				t.Errorf("Member(%s) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}
