package sdfx

import (
	"errors"
	"testing"

	"github.com/chazu/csgtree/pkg/csg"
	"github.com/chazu/csgtree/pkg/kernel"
)

func mustSolid(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatalf("primitive: %v", err)
		}
		return s
	}
}

func TestBoxContains(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(10, 20, 30))

	tests := []struct {
		name string
		p    [3]float64
		want bool
	}{
		{"centre", [3]float64{5, 10, 15}, true},
		{"near min corner", [3]float64{0.1, 0.1, 0.1}, true},
		{"outside negative", [3]float64{-1, 5, 5}, false},
		{"outside beyond z", [3]float64{5, 10, 31}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.Contains(box, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	lo, hi := box.BoundingBox()
	if lo != [3]float64{0, 0, 0} || hi != [3]float64{10, 20, 30} {
		t.Errorf("BoundingBox = %v, %v", lo, hi)
	}
}

func TestSphereAndCylinder(t *testing.T) {
	k := New()
	sphere := mustSolid(t)(k.Sphere(5))
	if !k.Contains(sphere, [3]float64{0, 0, 4.9}) || k.Contains(sphere, [3]float64{4, 4, 0}) {
		t.Error("sphere membership wrong")
	}

	cyl := mustSolid(t)(k.Cylinder(10, 2))
	if !k.Contains(cyl, [3]float64{1, 1, 4}) || k.Contains(cyl, [3]float64{0, 0, 6}) {
		t.Error("cylinder membership wrong")
	}

	if _, err := k.Sphere(-1); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	a := mustSolid(t)(k.Box(10, 10, 10))
	b := k.Translate(mustSolid(t)(k.Box(10, 10, 10)), 5, 0, 0)

	onlyA := [3]float64{2, 5, 5}
	both := [3]float64{7, 5, 5}
	onlyB := [3]float64{12, 5, 5}

	tests := []struct {
		name  string
		solid kernel.Solid
		want  [3]bool
	}{
		{"union", k.Union(a, b), [3]bool{true, true, true}},
		{"intersection", k.Intersection(a, b), [3]bool{false, true, false}},
		{"difference", k.Difference(a, b), [3]bool{true, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, p := range [][3]float64{onlyA, both, onlyB} {
				if got := k.Contains(tt.solid, p); got != tt.want[i] {
					t.Errorf("Contains(%v) = %v, want %v", p, got, tt.want[i])
				}
			}
		})
	}
}

func box(name string, at [3]float64) *csg.Node {
	return csg.MustLeaf(kernel.Primitive{
		Name: name,
		Kind: kernel.PrimBox,
		Size: [3]float64{10, 10, 10},
		At:   at,
	})
}

func sphere(name string, r float64, at [3]float64) *csg.Node {
	return csg.MustLeaf(kernel.Primitive{Name: name, Kind: kernel.PrimSphere, Radius: r, At: at})
}

// TestNormalizePreservesSolid checks rewriting against real geometry: the
// normalized tree must contain exactly the points the original contains.
func TestNormalizePreservesSolid(t *testing.T) {
	trees := map[string]func() *csg.Node{
		"difference of union": func() *csg.Node {
			return csg.MustOp(csg.Subtract,
				box("a", [3]float64{0, 0, 0}),
				csg.MustOp(csg.Add, sphere("b", 4, [3]float64{0, 0, 5}), sphere("c", 4, [3]float64{10, 10, 5})))
		},
		"difference of difference": func() *csg.Node {
			return csg.MustOp(csg.Subtract,
				box("a", [3]float64{0, 0, 0}),
				csg.MustOp(csg.Subtract, box("b", [3]float64{3, 3, 3}), sphere("c", 3, [3]float64{8, 8, 8})))
		},
		"difference of intersection": func() *csg.Node {
			return csg.MustOp(csg.Subtract,
				box("a", [3]float64{0, 0, 0}),
				csg.MustOp(csg.Intersect, sphere("b", 6, [3]float64{5, 5, 5}), box("c", [3]float64{4, -4, -4})))
		},
		"nested chains": func() *csg.Node {
			return csg.MustOp(csg.Add,
				csg.MustOp(csg.Add, sphere("z", 3, [3]float64{0, 0, 0}), box("y", [3]float64{2, 2, 2})),
				csg.MustOp(csg.Subtract, box("x", [3]float64{-5, -5, -5}),
					csg.MustOp(csg.Intersect, sphere("w", 4, [3]float64{0, 0, 0}), sphere("v", 4, [3]float64{2, 0, 0}))))
		},
	}

	k := New()
	for name, build := range trees {
		t.Run(name, func(t *testing.T) {
			orig := build()
			tr, err := csg.NewTree(build())
			if err != nil {
				t.Fatalf("NewTree: %v", err)
			}
			if err := tr.NormalizeRoot(); err != nil {
				t.Fatalf("NormalizeRoot: %v", err)
			}
			if err := kernel.Verify(k, orig, tr.Root(), 24); err != nil {
				t.Fatalf("normalized %s\n  from %s\n  %v", tr.Root(), orig, err)
			}
		})
	}
}

func TestVerifyDetectsDifferentSolids(t *testing.T) {
	k := New()
	ab := csg.MustOp(csg.Subtract, box("a", [3]float64{0, 0, 0}), box("b", [3]float64{5, 0, 0}))
	ba := csg.MustOp(csg.Subtract, box("b", [3]float64{5, 0, 0}), box("a", [3]float64{0, 0, 0}))
	err := kernel.Verify(k, ab, ba, 8)
	var m *kernel.Mismatch
	if !errors.As(err, &m) {
		t.Fatalf("Verify error = %v, want *kernel.Mismatch", err)
	}
	if !m.Before || m.After {
		t.Errorf("mismatch %+v: expected point inside a-b only", m)
	}
}
