package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/csgtree/pkg/csg"
)

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox PrimitiveKind = iota
	PrimSphere
	PrimCylinder
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimSphere:
		return "sphere"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// Primitive is a csg.Shape carrying the parameters a kernel needs to build
// it. Its identity is Name; two primitives with the same name are the same
// shape as far as canonical ordering is concerned.
type Primitive struct {
	Name   string
	Kind   PrimitiveKind
	Size   [3]float64 // box extents
	Radius float64    // sphere, cylinder
	Height float64    // cylinder
	At     [3]float64 // translation applied after construction
}

// ID implements csg.Shape.
func (p Primitive) ID() csg.ShapeID { return csg.ShapeID(p.Name) }

// Validate checks that the primitive has a name, finite positive dimensions
// and a finite position. Valid primitives compare equal to themselves, which
// the engine relies on to detect conflicting definitions of a name.
func (p Primitive) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%s: missing name", p.Kind)
	}
	switch p.Kind {
	case PrimBox:
		if !positive(p.Size[0]) || !positive(p.Size[1]) || !positive(p.Size[2]) {
			return fmt.Errorf("box %q: size must be positive, got %v", p.Name, p.Size)
		}
	case PrimSphere:
		if !positive(p.Radius) {
			return fmt.Errorf("sphere %q: radius must be positive, got %g", p.Name, p.Radius)
		}
	case PrimCylinder:
		if !positive(p.Radius) || !positive(p.Height) {
			return fmt.Errorf("cylinder %q: radius and height must be positive, got r=%g h=%g", p.Name, p.Radius, p.Height)
		}
	default:
		return fmt.Errorf("primitive %q: unknown kind %d", p.Name, int(p.Kind))
	}
	for _, v := range p.At {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s %q: position must be finite, got %v", p.Kind, p.Name, p.At)
		}
	}
	return nil
}

// positive reports whether x is a finite number above zero. NaN fails.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}
