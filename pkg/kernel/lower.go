package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/csgtree/pkg/csg"
)

// ErrUnresolvedShape is returned when a leaf's shape carries no geometry the
// kernel can build, e.g. a bare csg.Token.
var ErrUnresolvedShape = errors.New("shape has no kernel geometry")

// Lower builds the solid denoted by the tree rooted at n. The tree is only
// read; lowering a normalized tree yields the same point set as lowering the
// tree it was normalized from.
func Lower(n *csg.Node, k Kernel) (Solid, error) {
	if err := csg.Validate(n); err != nil {
		return nil, fmt.Errorf("kernel: lower: %w", err)
	}
	return lowerNode(n, k)
}

// lowerNode recursively dispatches on the node kind.
func lowerNode(n *csg.Node, k Kernel) (Solid, error) {
	if n.IsLeaf() {
		return lowerShape(n.Shape(), k)
	}

	a, err := lowerNode(n.Left(), k)
	if err != nil {
		return nil, err
	}
	b, err := lowerNode(n.Right(), k)
	if err != nil {
		return nil, err
	}

	switch n.Op() {
	case csg.Add:
		return k.Union(a, b), nil
	case csg.Intersect:
		return k.Intersection(a, b), nil
	case csg.Subtract:
		return k.Difference(a, b), nil
	default:
		return nil, fmt.Errorf("kernel: unknown node kind %s", n.Op())
	}
}

// lowerShape creates geometry for a leaf shape.
func lowerShape(s csg.Shape, k Kernel) (Solid, error) {
	var p Primitive
	switch v := s.(type) {
	case Primitive:
		p = v
	case *Primitive:
		p = *v
	default:
		return nil, fmt.Errorf("kernel: shape %q (%T): %w", s.ID(), s, ErrUnresolvedShape)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	var (
		solid Solid
		err   error
	)
	switch p.Kind {
	case PrimBox:
		solid, err = k.Box(p.Size[0], p.Size[1], p.Size[2])
	case PrimSphere:
		solid, err = k.Sphere(p.Radius)
	case PrimCylinder:
		solid, err = k.Cylinder(p.Height, p.Radius)
	}
	if err != nil {
		return nil, fmt.Errorf("kernel: %s %q: %w", p.Kind, p.Name, err)
	}

	if p.At != [3]float64{} {
		solid = k.Translate(solid, p.At[0], p.At[1], p.At[2])
	}
	return solid, nil
}

// Mismatch describes a sample point where two solids disagree.
type Mismatch struct {
	Point         [3]float64
	Before, After bool
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("solids disagree at (%g, %g, %g): before=%v after=%v",
		m.Point[0], m.Point[1], m.Point[2], m.Before, m.After)
}

// Verify lowers before and after and checks that they agree on membership at
// every point of a samples³ grid spanning the bounding box of before. It
// returns a *Mismatch for the first disagreement.
func Verify(k Kernel, before, after *csg.Node, samples int) error {
	if samples < 2 {
		return fmt.Errorf("kernel: verify: need at least 2 samples per axis, got %d", samples)
	}
	sb, err := Lower(before, k)
	if err != nil {
		return err
	}
	sa, err := Lower(after, k)
	if err != nil {
		return err
	}

	lo, hi := sb.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.IsInf(lo[i], 0) || math.IsInf(hi[i], 0) || math.IsNaN(lo[i]) || math.IsNaN(hi[i]) {
			return fmt.Errorf("kernel: verify: unbounded solid")
		}
	}

	// Sample cell centres so that grid points avoid faces aligned with the
	// bounding box.
	var p [3]float64
	for i := 0; i < samples; i++ {
		p[0] = lerp(lo[0], hi[0], i, samples)
		for j := 0; j < samples; j++ {
			p[1] = lerp(lo[1], hi[1], j, samples)
			for l := 0; l < samples; l++ {
				p[2] = lerp(lo[2], hi[2], l, samples)
				b, a := k.Contains(sb, p), k.Contains(sa, p)
				if a != b {
					return &Mismatch{Point: p, Before: b, After: a}
				}
			}
		}
	}
	return nil
}

func lerp(lo, hi float64, i, n int) float64 {
	return lo + (hi-lo)*(float64(i)+0.5)/float64(n)
}
