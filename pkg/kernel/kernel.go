// Package kernel defines the abstract geometry kernel that CSG trees are
// lowered into. Implementations (sdfx) provide primitives, boolean
// operations and point membership behind this interface, so the rest of the
// system never depends on a particular solid representation.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Boxes have their minimum corner at the origin; spheres and
	// cylinders are centred on it, cylinders running along Z.
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid

	// Contains reports whether p lies inside or on the surface of s.
	Contains(s Solid, p [3]float64) bool
}
